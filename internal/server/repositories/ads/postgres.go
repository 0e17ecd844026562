package ads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aquidolado/aqui/internal/common"
	"github.com/aquidolado/aqui/internal/dbx"
	"github.com/aquidolado/aqui/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ad *models.Ad) (*models.Ad, error) {
	query :=
		`INSERT INTO ads (community_id, user_id, type, title, description, price_cents, service_type, recommended_contact, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		ad.CommunityID, ad.UserID, string(ad.Type), ad.Title, ad.Description,
		ad.Price, ad.ServiceType, ad.RecommendedContact, string(ad.Status)).
		Scan(&ad.ID, &ad.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ad, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ad *models.Ad) error {
	query :=
		`UPDATE ads SET type = $2, title = $3, description = $4, price_cents = $5,
		        service_type = $6, recommended_contact = $7
		 WHERE id = $1
		 `

	_, err := r.db.ExecContext(ctx, query,
		ad.ID, string(ad.Type), ad.Title, ad.Description, ad.Price, ad.ServiceType, ad.RecommendedContact)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// adSelect joins user display data and rating aggregates onto each ad row.
// viewerID feeds the current-user rating subquery; pass 0 for "no viewer".
const adSelect = `
	SELECT a.id, a.community_id, a.user_id, a.type, a.title, a.description,
	       a.price_cents, a.service_type, a.recommended_contact, a.status, a.created_at,
	       u.name, u.whatsapp,
	       COALESCE(rt.avg_rating, 0), COALESCE(rt.rating_count, 0), mine.rating
	FROM ads a
	JOIN users u ON u.id = a.user_id
	LEFT JOIN (
	    SELECT ad_id, AVG(rating)::float8 AS avg_rating, COUNT(*) AS rating_count
	    FROM ad_ratings GROUP BY ad_id
	) rt ON rt.ad_id = a.id
	LEFT JOIN ad_ratings mine ON mine.ad_id = a.id AND mine.user_id = $1
`

func (r *PostgresRepository) scanAds(rows *sql.Rows) ([]*models.Ad, error) {
	var result []*models.Ad
	for rows.Next() {
		ad := &models.Ad{}
		var currentRating sql.NullInt64
		err := rows.Scan(&ad.ID, &ad.CommunityID, &ad.UserID, &ad.Type, &ad.Title, &ad.Description,
			&ad.Price, &ad.ServiceType, &ad.RecommendedContact, &ad.Status, &ad.CreatedAt,
			&ad.UserName, &ad.UserWhatsapp,
			&ad.AverageRating, &ad.RatingCount, &currentRating)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if currentRating.Valid {
			v := int(currentRating.Int64)
			ad.CurrentUserRating = &v
		}
		result = append(result, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Ad, error) {
	rows, err := r.db.QueryContext(ctx, adSelect+` WHERE a.id = $2`, viewerID, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ads, err := r.scanAds(rows)
	if err != nil {
		return nil, err
	}
	if len(ads) == 0 {
		return nil, common.ErrorNotFound
	}

	ad := ads[0]
	ad.ImageKeys, err = r.imageKeys(ctx, ad.ID)
	if err != nil {
		return nil, err
	}
	return ad, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*models.Ad, int64, error) {
	where := []string{`a.community_id = $2`, `a.status = 'ACTIVE'`}
	args := []any{f.CommunityID}

	if len(f.Types) > 0 {
		placeholders := make([]string, len(f.Types))
		for i, t := range f.Types {
			args = append(args, string(t))
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		}
		where = append(where, `a.type IN (`+strings.Join(placeholders, ", ")+`)`)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		p := fmt.Sprintf("$%d", len(args)+1)
		where = append(where, `(a.title ILIKE `+p+` OR a.description ILIKE `+p+`)`)
	}

	return r.pagedList(ctx, f.ViewerID, f.Page, f.Size, strings.Join(where, " AND "), orderClause(f.Sort), args)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, page, size int) ([]*models.Ad, int64, error) {
	return r.pagedList(ctx, userID, page, size, `a.user_id = $2`, orderClause(SortNewest), []any{userID})
}

// orderClause maps a sort key to its ORDER BY. Only whitelisted keys reach
// the query; unknown input degrades to newest-first.
func orderClause(sort string) string {
	switch sort {
	case SortOldest:
		return `a.created_at ASC`
	case SortPriceAsc:
		return `a.price_cents ASC NULLS LAST, a.created_at DESC`
	case SortPriceDesc:
		return `a.price_cents DESC NULLS LAST, a.created_at DESC`
	default:
		return `a.created_at DESC`
	}
}

// pagedList runs adSelect with the given WHERE clause plus a matching COUNT
// query. Args must not include the viewer and limit/offset placeholders; the
// clause numbers its placeholders from $2 ($1 is reserved for the viewer).
func (r *PostgresRepository) pagedList(ctx context.Context, viewerID int64, page, size int, where, order string, args []any) ([]*models.Ad, int64, error) {
	// Counting over the full select keeps the placeholder numbering shared
	// with the page query ($1 stays the viewer).
	countQuery := `SELECT COUNT(*) FROM (` + adSelect + ` WHERE ` + where + `) sub`
	countArgs := append([]any{viewerID}, args...)

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	fullArgs := append([]any{viewerID}, args...)
	limit := fmt.Sprintf("$%d", len(fullArgs)+1)
	offset := fmt.Sprintf("$%d", len(fullArgs)+2)
	fullArgs = append(fullArgs, size, page*size)

	query := adSelect + ` WHERE ` + where + ` ORDER BY ` + order + ` LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := r.db.QueryContext(ctx, query, fullArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ads, err := r.scanAds(rows)
	if err != nil {
		return nil, 0, err
	}

	for _, ad := range ads {
		if ad.ImageKeys, err = r.imageKeys(ctx, ad.ID); err != nil {
			return nil, 0, err
		}
	}
	return ads, total, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status models.AdStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE ads SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) imageKeys(ctx context.Context, adID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT object_key FROM ad_images WHERE ad_id = $1 ORDER BY position`, adID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return keys, nil
}

func (r *PostgresRepository) ReplaceImages(ctx context.Context, adID int64, keys []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ad_images WHERE ad_id = $1`, adID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for i, key := range keys {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO ad_images (ad_id, position, object_key) VALUES ($1, $2, $3)`, adID, i, key)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) UpsertRating(ctx context.Context, adID, userID int64, rating int) error {
	query :=
		`INSERT INTO ad_ratings (ad_id, user_id, rating)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (ad_id, user_id) DO UPDATE SET rating = excluded.rating
		 `
	if _, err := r.db.ExecContext(ctx, query, adID, userID, rating); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteRating(ctx context.Context, adID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ad_ratings WHERE ad_id = $1 AND user_id = $2`, adID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const commentSelect = `
	SELECT c.id, c.ad_id, c.user_id, u.name, c.body, c.created_at,
	       COALESCE(l.like_count, 0),
	       EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = c.id AND user_id = $1)
	FROM comments c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN (
	    SELECT comment_id, COUNT(*) AS like_count FROM comment_likes GROUP BY comment_id
	) l ON l.comment_id = c.id
`

func (r *PostgresRepository) ListComments(ctx context.Context, adID, viewerID int64, page, size int) ([]*models.Comment, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE ad_id = $1`, adID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := commentSelect + ` WHERE c.ad_id = $2 ORDER BY c.created_at LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, viewerID, adID, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.AdID, &c.UserID, &c.UserName, &c.Body, &c.CreatedAt, &c.LikeCount, &c.LikedByMe); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return result, total, nil
}

func (r *PostgresRepository) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (ad_id, user_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, c.AdID, c.UserID, c.Body).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	query := commentSelect + ` WHERE c.id = $2`

	c := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, int64(0), id).
		Scan(&c.ID, &c.AdID, &c.UserID, &c.UserName, &c.Body, &c.CreatedAt, &c.LikeCount, &c.LikedByMe)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) DeleteComment(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ToggleCommentLike removes the caller's like if present, otherwise adds it.
func (r *PostgresRepository) ToggleCommentLike(ctx context.Context, commentID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, commentID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
