package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/aquidolado/aqui/internal/dbx"
	"github.com/aquidolado/aqui/internal/logging"
	"github.com/aquidolado/aqui/internal/server/models"
	actiontokensrepo "github.com/aquidolado/aqui/internal/server/repositories/actiontokens"
	adsrepo "github.com/aquidolado/aqui/internal/server/repositories/ads"
	communitiesrepo "github.com/aquidolado/aqui/internal/server/repositories/communities"
	moderationrepo "github.com/aquidolado/aqui/internal/server/repositories/moderation"
	usersrepo "github.com/aquidolado/aqui/internal/server/repositories/users"
)

// --- shared test helpers: sqlmock db, fake repositories, fake stores ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Fake repositories use function fields so each test overrides only what it
// touches; unset methods panic loudly.

type fakeUsersRepo struct {
	CreateFn           func(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmailFn       func(ctx context.Context, email string) (*models.User, error)
	GetByIDFn          func(ctx context.Context, id int64) (*models.User, error)
	UpdateProfileFn    func(ctx context.Context, id int64, name, whatsapp, address string) (*models.User, error)
	SetEmailVerifiedFn func(ctx context.Context, id int64, verified bool) error
	UpdatePasswordFn   func(ctx context.Context, id int64, passwordHash []byte) error
	DeleteFn           func(ctx context.Context, id int64) error
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return f.CreateFn(ctx, user)
}
func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.GetByEmailFn(ctx, email)
}
func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id int64, name, whatsapp, address string) (*models.User, error) {
	return f.UpdateProfileFn(ctx, id, name, whatsapp, address)
}
func (f *fakeUsersRepo) SetEmailVerified(ctx context.Context, id int64, verified bool) error {
	return f.SetEmailVerifiedFn(ctx, id, verified)
}
func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash []byte) error {
	return f.UpdatePasswordFn(ctx, id, passwordHash)
}
func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	return f.DeleteFn(ctx, id)
}

type fakeActionTokensRepo struct {
	CreateFn        func(ctx context.Context, token *models.ActionToken) error
	FindFn          func(ctx context.Context, token string, purpose models.TokenPurpose) (*models.ActionToken, error)
	DeleteFn        func(ctx context.Context, token string) error
	DeleteForUserFn func(ctx context.Context, userID int64, purpose models.TokenPurpose) error
}

func (f *fakeActionTokensRepo) Create(ctx context.Context, token *models.ActionToken) error {
	return f.CreateFn(ctx, token)
}
func (f *fakeActionTokensRepo) Find(ctx context.Context, token string, purpose models.TokenPurpose) (*models.ActionToken, error) {
	return f.FindFn(ctx, token, purpose)
}
func (f *fakeActionTokensRepo) Delete(ctx context.Context, token string) error {
	return f.DeleteFn(ctx, token)
}
func (f *fakeActionTokensRepo) DeleteForUser(ctx context.Context, userID int64, purpose models.TokenPurpose) error {
	return f.DeleteForUserFn(ctx, userID, purpose)
}

type fakeCommunitiesRepo struct {
	CreateFn                  func(ctx context.Context, c *models.Community) (*models.Community, error)
	GetByIDFn                 func(ctx context.Context, id int64) (*models.Community, error)
	GetByAccessCodeFn         func(ctx context.Context, code string) (*models.Community, error)
	ListByUserFn              func(ctx context.Context, userID int64) ([]*models.Community, error)
	ListWhereAdminFn          func(ctx context.Context, userID int64) ([]*models.Community, error)
	RenameFn                  func(ctx context.Context, id int64, name string) error
	SetAccessCodeFn           func(ctx context.Context, id int64, code string) error
	DeleteFn                  func(ctx context.Context, id int64) error
	AddMemberFn               func(ctx context.Context, communityID, userID int64, isAdmin bool) error
	RemoveMemberFn            func(ctx context.Context, communityID, userID int64) error
	IsMemberFn                func(ctx context.Context, communityID, userID int64) (bool, error)
	IsAdminFn                 func(ctx context.Context, communityID, userID int64) (bool, error)
	SetAdminFn                func(ctx context.Context, communityID, userID int64, isAdmin bool) error
	ListMembersFn             func(ctx context.Context, communityID int64) ([]*models.Member, error)
	CountAdminsFn             func(ctx context.Context, communityID int64) (int, error)
	CreateJoinRequestFn       func(ctx context.Context, communityID, userID int64) error
	GetJoinRequestFn          func(ctx context.Context, id int64) (*models.JoinRequest, error)
	ListPendingJoinRequestsFn func(ctx context.Context, communityID int64) ([]*models.JoinRequest, error)
	SetJoinRequestStatusFn    func(ctx context.Context, id int64, status models.JoinRequestStatus) error
	HasPendingJoinRequestFn   func(ctx context.Context, communityID, userID int64) (bool, error)
}

func (f *fakeCommunitiesRepo) Create(ctx context.Context, c *models.Community) (*models.Community, error) {
	return f.CreateFn(ctx, c)
}
func (f *fakeCommunitiesRepo) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeCommunitiesRepo) GetByAccessCode(ctx context.Context, code string) (*models.Community, error) {
	return f.GetByAccessCodeFn(ctx, code)
}
func (f *fakeCommunitiesRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Community, error) {
	return f.ListByUserFn(ctx, userID)
}
func (f *fakeCommunitiesRepo) ListWhereAdmin(ctx context.Context, userID int64) ([]*models.Community, error) {
	return f.ListWhereAdminFn(ctx, userID)
}
func (f *fakeCommunitiesRepo) Rename(ctx context.Context, id int64, name string) error {
	return f.RenameFn(ctx, id, name)
}
func (f *fakeCommunitiesRepo) SetAccessCode(ctx context.Context, id int64, code string) error {
	return f.SetAccessCodeFn(ctx, id, code)
}
func (f *fakeCommunitiesRepo) Delete(ctx context.Context, id int64) error {
	return f.DeleteFn(ctx, id)
}
func (f *fakeCommunitiesRepo) AddMember(ctx context.Context, communityID, userID int64, isAdmin bool) error {
	return f.AddMemberFn(ctx, communityID, userID, isAdmin)
}
func (f *fakeCommunitiesRepo) RemoveMember(ctx context.Context, communityID, userID int64) error {
	return f.RemoveMemberFn(ctx, communityID, userID)
}
func (f *fakeCommunitiesRepo) IsMember(ctx context.Context, communityID, userID int64) (bool, error) {
	return f.IsMemberFn(ctx, communityID, userID)
}
func (f *fakeCommunitiesRepo) IsAdmin(ctx context.Context, communityID, userID int64) (bool, error) {
	return f.IsAdminFn(ctx, communityID, userID)
}
func (f *fakeCommunitiesRepo) SetAdmin(ctx context.Context, communityID, userID int64, isAdmin bool) error {
	return f.SetAdminFn(ctx, communityID, userID, isAdmin)
}
func (f *fakeCommunitiesRepo) ListMembers(ctx context.Context, communityID int64) ([]*models.Member, error) {
	return f.ListMembersFn(ctx, communityID)
}
func (f *fakeCommunitiesRepo) CountAdmins(ctx context.Context, communityID int64) (int, error) {
	return f.CountAdminsFn(ctx, communityID)
}
func (f *fakeCommunitiesRepo) CreateJoinRequest(ctx context.Context, communityID, userID int64) error {
	return f.CreateJoinRequestFn(ctx, communityID, userID)
}
func (f *fakeCommunitiesRepo) GetJoinRequest(ctx context.Context, id int64) (*models.JoinRequest, error) {
	return f.GetJoinRequestFn(ctx, id)
}
func (f *fakeCommunitiesRepo) ListPendingJoinRequests(ctx context.Context, communityID int64) ([]*models.JoinRequest, error) {
	return f.ListPendingJoinRequestsFn(ctx, communityID)
}
func (f *fakeCommunitiesRepo) SetJoinRequestStatus(ctx context.Context, id int64, status models.JoinRequestStatus) error {
	return f.SetJoinRequestStatusFn(ctx, id, status)
}
func (f *fakeCommunitiesRepo) HasPendingJoinRequest(ctx context.Context, communityID, userID int64) (bool, error) {
	return f.HasPendingJoinRequestFn(ctx, communityID, userID)
}

type fakeAdsRepo struct {
	CreateFn            func(ctx context.Context, ad *models.Ad) (*models.Ad, error)
	UpdateFn            func(ctx context.Context, ad *models.Ad) error
	GetByIDFn           func(ctx context.Context, id, viewerID int64) (*models.Ad, error)
	ListFn              func(ctx context.Context, f adsrepo.ListFilter) ([]*models.Ad, int64, error)
	ListByUserFn        func(ctx context.Context, userID int64, page, size int) ([]*models.Ad, int64, error)
	SetStatusFn         func(ctx context.Context, id int64, status models.AdStatus) error
	DeleteFn            func(ctx context.Context, id int64) error
	ReplaceImagesFn     func(ctx context.Context, adID int64, keys []string) error
	UpsertRatingFn      func(ctx context.Context, adID, userID int64, rating int) error
	DeleteRatingFn      func(ctx context.Context, adID, userID int64) error
	ListCommentsFn      func(ctx context.Context, adID, viewerID int64, page, size int) ([]*models.Comment, int64, error)
	CreateCommentFn     func(ctx context.Context, c *models.Comment) (*models.Comment, error)
	GetCommentFn        func(ctx context.Context, id int64) (*models.Comment, error)
	DeleteCommentFn     func(ctx context.Context, id int64) error
	ToggleCommentLikeFn func(ctx context.Context, commentID, userID int64) error
}

func (f *fakeAdsRepo) Create(ctx context.Context, ad *models.Ad) (*models.Ad, error) {
	return f.CreateFn(ctx, ad)
}
func (f *fakeAdsRepo) Update(ctx context.Context, ad *models.Ad) error { return f.UpdateFn(ctx, ad) }
func (f *fakeAdsRepo) GetByID(ctx context.Context, id, viewerID int64) (*models.Ad, error) {
	return f.GetByIDFn(ctx, id, viewerID)
}
func (f *fakeAdsRepo) List(ctx context.Context, fl adsrepo.ListFilter) ([]*models.Ad, int64, error) {
	return f.ListFn(ctx, fl)
}
func (f *fakeAdsRepo) ListByUser(ctx context.Context, userID int64, page, size int) ([]*models.Ad, int64, error) {
	return f.ListByUserFn(ctx, userID, page, size)
}
func (f *fakeAdsRepo) SetStatus(ctx context.Context, id int64, status models.AdStatus) error {
	return f.SetStatusFn(ctx, id, status)
}
func (f *fakeAdsRepo) Delete(ctx context.Context, id int64) error { return f.DeleteFn(ctx, id) }
func (f *fakeAdsRepo) ReplaceImages(ctx context.Context, adID int64, keys []string) error {
	return f.ReplaceImagesFn(ctx, adID, keys)
}
func (f *fakeAdsRepo) UpsertRating(ctx context.Context, adID, userID int64, rating int) error {
	return f.UpsertRatingFn(ctx, adID, userID, rating)
}
func (f *fakeAdsRepo) DeleteRating(ctx context.Context, adID, userID int64) error {
	return f.DeleteRatingFn(ctx, adID, userID)
}
func (f *fakeAdsRepo) ListComments(ctx context.Context, adID, viewerID int64, page, size int) ([]*models.Comment, int64, error) {
	return f.ListCommentsFn(ctx, adID, viewerID, page, size)
}
func (f *fakeAdsRepo) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	return f.CreateCommentFn(ctx, c)
}
func (f *fakeAdsRepo) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	return f.GetCommentFn(ctx, id)
}
func (f *fakeAdsRepo) DeleteComment(ctx context.Context, id int64) error {
	return f.DeleteCommentFn(ctx, id)
}
func (f *fakeAdsRepo) ToggleCommentLike(ctx context.Context, commentID, userID int64) error {
	return f.ToggleCommentLikeFn(ctx, commentID, userID)
}

type fakeModerationRepo struct {
	CreateReportFn       func(ctx context.Context, report *models.Report) error
	CreateContactClickFn func(ctx context.Context, click *models.ContactClick) error
	CreateEventFn        func(ctx context.Context, event *models.Event) error
}

func (f *fakeModerationRepo) CreateReport(ctx context.Context, report *models.Report) error {
	return f.CreateReportFn(ctx, report)
}
func (f *fakeModerationRepo) CreateContactClick(ctx context.Context, click *models.ContactClick) error {
	return f.CreateContactClickFn(ctx, click)
}
func (f *fakeModerationRepo) CreateEvent(ctx context.Context, event *models.Event) error {
	return f.CreateEventFn(ctx, event)
}

type fakeRepoManager struct {
	users        *fakeUsersRepo
	actionTokens *fakeActionTokensRepo
	communities  *fakeCommunitiesRepo
	ads          *fakeAdsRepo
	moderation   *fakeModerationRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.users }
func (m *fakeRepoManager) ActionTokens(db dbx.DBTX) actiontokensrepo.Repository {
	return m.actionTokens
}
func (m *fakeRepoManager) Communities(db dbx.DBTX) communitiesrepo.Repository { return m.communities }
func (m *fakeRepoManager) Ads(db dbx.DBTX) adsrepo.Repository                 { return m.ads }
func (m *fakeRepoManager) Moderation(db dbx.DBTX) moderationrepo.Repository   { return m.moderation }

// fakeImageStore records puts/deletes in memory.
type fakeImageStore struct {
	objects map[string]string // key -> content type
	putErr  error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: map[string]string{}}
}

func (f *fakeImageStore) Put(ctx context.Context, key string, contentType string, body io.Reader) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = contentType
	return nil
}

func (f *fakeImageStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeImageStore) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://images.test/" + key, nil
}

// fakeMailer records sent messages.
type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
