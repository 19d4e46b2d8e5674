package usecase

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"mediateka/internal/data/entity"
	"mediateka/internal/data/repository"
	"mediateka/internal/dto/request"
	"mediateka/pkg/auth"
	"mediateka/pkg/permission"
	"mediateka/pkg/utils"
)

// fakeStore is the shared state behind the in-memory repository fakes. Find
// methods hand out copies the way row scanning does, so a change a service
// forgets to persist stays invisible to later reads.
type fakeStore struct {
	users       map[uuid.UUID]*entity.User
	codes       []*entity.ConfirmationCode
	categories  map[uuid.UUID]*entity.Category
	genres      map[uuid.UUID]*entity.Genre
	titles      map[uuid.UUID]*entity.Title
	titleGenres []*entity.TitleGenre
	reviews     map[uuid.UUID]*entity.Review
	comments    map[uuid.UUID]*entity.Comment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[uuid.UUID]*entity.User{},
		categories: map[uuid.UUID]*entity.Category{},
		genres:     map[uuid.UUID]*entity.Genre{},
		titles:     map[uuid.UUID]*entity.Title{},
		reviews:    map[uuid.UUID]*entity.Review{},
		comments:   map[uuid.UUID]*entity.Comment{},
	}
}

func newFakeRepository() (*repository.Repository, *fakeStore) {
	store := newFakeStore()
	repo := &repository.Repository{
		User:         &fakeUserRepo{store: store},
		Confirmation: &fakeConfirmationRepo{store: store},
		Category:     &fakeCategoryRepo{store: store},
		Genre:        &fakeGenreRepo{store: store},
		Title:        &fakeTitleRepo{store: store},
		TitleGenre:   &fakeTitleGenreRepo{store: store},
		Review:       &fakeReviewRepo{store: store},
		Comment:      &fakeCommentRepo{store: store},
	}
	return repo, store
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ==================== USER ====================

type fakeUserRepo struct {
	store *fakeStore
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.store.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return cloneUser(f.store.users[id]), nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.store.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range f.store.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range f.store.users {
		if search == "" || containsFold(u.Username, search) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return paginate(out, limit, offset), nil
}

func (f *fakeUserRepo) CountAll(ctx context.Context, search string) (int64, error) {
	var count int64
	for _, u := range f.store.users {
		if search == "" || containsFold(u.Username, search) {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.store.users[user.ID] = cloneUser(user)
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.store.users, id)
	return nil
}

// ==================== CONFIRMATION ====================

type fakeConfirmationRepo struct {
	store *fakeStore
}

func (f *fakeConfirmationRepo) Create(ctx context.Context, code *entity.ConfirmationCode) error {
	c := *code
	f.store.codes = append(f.store.codes, &c)
	return nil
}

func (f *fakeConfirmationRepo) FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error) {
	now := time.Now()
	for i := len(f.store.codes) - 1; i >= 0; i-- {
		code := f.store.codes[i]
		if code.UserID == userID && !code.IsUsed && code.ExpiresAt.After(now) {
			c := *code
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeConfirmationRepo) MarkAsUsed(ctx context.Context, codeID uuid.UUID) error {
	for _, code := range f.store.codes {
		if code.ID == codeID {
			code.IsUsed = true
		}
	}
	return nil
}

// ==================== CATEGORY ====================

type fakeCategoryRepo struct {
	store *fakeStore
}

func cloneCategory(c *entity.Category) *entity.Category {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	f.store.categories[category.ID] = cloneCategory(category)
	return nil
}

func (f *fakeCategoryRepo) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	for _, c := range f.store.categories {
		if c.Slug == slug {
			return cloneCategory(c), nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range f.store.categories {
		if search == "" || containsFold(c.Name, search) {
			out = append(out, cloneCategory(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

func (f *fakeCategoryRepo) CountAll(ctx context.Context, search string) (int64, error) {
	var count int64
	for _, c := range f.store.categories {
		if search == "" || containsFold(c.Name, search) {
			count++
		}
	}
	return count, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	f.store.categories[category.ID] = cloneCategory(category)
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.store.categories, id)
	return nil
}

// ==================== GENRE ====================

type fakeGenreRepo struct {
	store *fakeStore
}

func cloneGenre(g *entity.Genre) *entity.Genre {
	if g == nil {
		return nil
	}
	gc := *g
	return &gc
}

func (f *fakeGenreRepo) Create(ctx context.Context, genre *entity.Genre) error {
	f.store.genres[genre.ID] = cloneGenre(genre)
	return nil
}

func (f *fakeGenreRepo) FindBySlug(ctx context.Context, slug string) (*entity.Genre, error) {
	for _, g := range f.store.genres {
		if g.Slug == slug {
			return cloneGenre(g), nil
		}
	}
	return nil, nil
}

func (f *fakeGenreRepo) FindBySlugs(ctx context.Context, slugs []string) ([]*entity.Genre, error) {
	var out []*entity.Genre
	for _, slug := range slugs {
		for _, g := range f.store.genres {
			if g.Slug == slug {
				out = append(out, cloneGenre(g))
				break
			}
		}
	}
	return out, nil
}

func (f *fakeGenreRepo) FindByTitleID(ctx context.Context, titleID uuid.UUID) ([]*entity.Genre, error) {
	var out []*entity.Genre
	for _, tg := range f.store.titleGenres {
		if tg.TitleID == titleID {
			if g, ok := f.store.genres[tg.GenreID]; ok {
				out = append(out, cloneGenre(g))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeGenreRepo) FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Genre, error) {
	var out []*entity.Genre
	for _, g := range f.store.genres {
		if search == "" || containsFold(g.Name, search) {
			out = append(out, cloneGenre(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

func (f *fakeGenreRepo) CountAll(ctx context.Context, search string) (int64, error) {
	var count int64
	for _, g := range f.store.genres {
		if search == "" || containsFold(g.Name, search) {
			count++
		}
	}
	return count, nil
}

func (f *fakeGenreRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.store.genres, id)
	return nil
}

// ==================== TITLE ====================

type fakeTitleRepo struct {
	store *fakeStore
}

// read copies a stored title and fills the category join the way the SQL
// does. Genres stay nil; the service loads them separately.
func (f *fakeTitleRepo) read(t *entity.Title) *entity.Title {
	if t == nil {
		return nil
	}
	c := *t
	c.Genres = nil
	c.Category = nil
	if c.CategoryID != nil {
		c.Category = cloneCategory(f.store.categories[*c.CategoryID])
	}
	return &c
}

func storeTitle(t *entity.Title) *entity.Title {
	c := *t
	c.Category = nil
	c.Genres = nil
	return &c
}

func (f *fakeTitleRepo) Create(ctx context.Context, title *entity.Title) error {
	f.store.titles[title.ID] = storeTitle(title)
	return nil
}

func (f *fakeTitleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Title, error) {
	return f.read(f.store.titles[id]), nil
}

func (f *fakeTitleRepo) matches(t *entity.Title, filter repository.TitleFilter) bool {
	if filter.Category != "" {
		if t.CategoryID == nil {
			return false
		}
		category := f.store.categories[*t.CategoryID]
		if category == nil || category.Slug != filter.Category {
			return false
		}
	}
	if filter.Genre != "" {
		found := false
		for _, tg := range f.store.titleGenres {
			if tg.TitleID != t.ID {
				continue
			}
			if g := f.store.genres[tg.GenreID]; g != nil && g.Slug == filter.Genre {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Name != "" && !containsFold(t.Name, filter.Name) {
		return false
	}
	if filter.Year != nil && t.Year != *filter.Year {
		return false
	}
	return true
}

func (f *fakeTitleRepo) FindAll(ctx context.Context, filter repository.TitleFilter, limit, offset int) ([]*entity.Title, error) {
	var out []*entity.Title
	for _, t := range f.store.titles {
		if f.matches(t, filter) {
			out = append(out, f.read(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (f *fakeTitleRepo) CountAll(ctx context.Context, filter repository.TitleFilter) (int64, error) {
	var count int64
	for _, t := range f.store.titles {
		if f.matches(t, filter) {
			count++
		}
	}
	return count, nil
}

func (f *fakeTitleRepo) Update(ctx context.Context, title *entity.Title) error {
	f.store.titles[title.ID] = storeTitle(title)
	return nil
}

func (f *fakeTitleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.store.titles, id)
	return nil
}

func (f *fakeTitleRepo) ClearCategory(ctx context.Context, categoryID uuid.UUID) error {
	for _, t := range f.store.titles {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			t.CategoryID = nil
		}
	}
	return nil
}

// ==================== TITLE GENRE ====================

type fakeTitleGenreRepo struct {
	store *fakeStore
}

func (f *fakeTitleGenreRepo) CreateBatch(ctx context.Context, titleGenres []*entity.TitleGenre) error {
	for _, tg := range titleGenres {
		c := *tg
		f.store.titleGenres = append(f.store.titleGenres, &c)
	}
	return nil
}

func (f *fakeTitleGenreRepo) DeleteByTitleID(ctx context.Context, titleID uuid.UUID) error {
	var kept []*entity.TitleGenre
	for _, tg := range f.store.titleGenres {
		if tg.TitleID != titleID {
			kept = append(kept, tg)
		}
	}
	f.store.titleGenres = kept
	return nil
}

func (f *fakeTitleGenreRepo) DeleteByGenreID(ctx context.Context, genreID uuid.UUID) error {
	var kept []*entity.TitleGenre
	for _, tg := range f.store.titleGenres {
		if tg.GenreID != genreID {
			kept = append(kept, tg)
		}
	}
	f.store.titleGenres = kept
	return nil
}

// ==================== REVIEW ====================

type fakeReviewRepo struct {
	store *fakeStore
}

// read copies a stored review and fills the author join.
func (f *fakeReviewRepo) read(rv *entity.Review) *entity.Review {
	if rv == nil {
		return nil
	}
	c := *rv
	if u, ok := f.store.users[rv.AuthorID]; ok {
		c.AuthorName = u.Username
	}
	return &c
}

func storeReview(rv *entity.Review) *entity.Review {
	c := *rv
	c.AuthorName = ""
	return &c
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	f.store.reviews[review.ID] = storeReview(review)
	return nil
}

func (f *fakeReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	return f.read(f.store.reviews[id]), nil
}

func (f *fakeReviewRepo) FindByTitleID(ctx context.Context, titleID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	var out []*entity.Review
	for _, rv := range f.store.reviews {
		if rv.TitleID == titleID {
			out = append(out, f.read(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (f *fakeReviewRepo) CountByTitleID(ctx context.Context, titleID uuid.UUID) (int64, error) {
	var count int64
	for _, rv := range f.store.reviews {
		if rv.TitleID == titleID {
			count++
		}
	}
	return count, nil
}

func (f *fakeReviewRepo) ExistsByTitleAndAuthor(ctx context.Context, titleID, authorID uuid.UUID) (bool, error) {
	for _, rv := range f.store.reviews {
		if rv.TitleID == titleID && rv.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) Update(ctx context.Context, review *entity.Review) error {
	f.store.reviews[review.ID] = storeReview(review)
	return nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.store.reviews, id)
	return nil
}

func (f *fakeReviewRepo) DeleteByTitleID(ctx context.Context, titleID uuid.UUID) error {
	for id, rv := range f.store.reviews {
		if rv.TitleID == titleID {
			delete(f.store.reviews, id)
		}
	}
	return nil
}

func (f *fakeReviewRepo) TitleRating(ctx context.Context, titleID uuid.UUID) (*float64, error) {
	var sum, count float64
	for _, rv := range f.store.reviews {
		if rv.TitleID == titleID {
			sum += float64(rv.Score)
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	mean := sum / count
	return &mean, nil
}

// ==================== COMMENT ====================

type fakeCommentRepo struct {
	store *fakeStore
}

// read copies a stored comment and fills the author and review joins.
func (f *fakeCommentRepo) read(cm *entity.Comment) *entity.Comment {
	if cm == nil {
		return nil
	}
	c := *cm
	if u, ok := f.store.users[cm.AuthorID]; ok {
		c.AuthorName = u.Username
	}
	if rv, ok := f.store.reviews[cm.ReviewID]; ok {
		c.ReviewText = rv.Text
	}
	return &c
}

func storeComment(cm *entity.Comment) *entity.Comment {
	c := *cm
	c.AuthorName = ""
	c.ReviewText = ""
	return &c
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	f.store.comments[comment.ID] = storeComment(comment)
	return nil
}

func (f *fakeCommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	return f.read(f.store.comments[id]), nil
}

func (f *fakeCommentRepo) FindByReviewID(ctx context.Context, reviewID uuid.UUID, limit, offset int) ([]*entity.Comment, error) {
	var out []*entity.Comment
	for _, cm := range f.store.comments {
		if cm.ReviewID == reviewID {
			out = append(out, f.read(cm))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (f *fakeCommentRepo) CountByReviewID(ctx context.Context, reviewID uuid.UUID) (int64, error) {
	var count int64
	for _, cm := range f.store.comments {
		if cm.ReviewID == reviewID {
			count++
		}
	}
	return count, nil
}

func (f *fakeCommentRepo) Update(ctx context.Context, comment *entity.Comment) error {
	f.store.comments[comment.ID] = storeComment(comment)
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.store.comments, id)
	return nil
}

func (f *fakeCommentRepo) DeleteByReviewID(ctx context.Context, reviewID uuid.UUID) error {
	for id, cm := range f.store.comments {
		if cm.ReviewID == reviewID {
			delete(f.store.comments, id)
		}
	}
	return nil
}

func (f *fakeCommentRepo) DeleteByTitleID(ctx context.Context, titleID uuid.UUID) error {
	for id, cm := range f.store.comments {
		if rv, ok := f.store.reviews[cm.ReviewID]; ok && rv.TitleID == titleID {
			delete(f.store.comments, id)
		}
	}
	return nil
}

// ==================== SEED HELPERS ====================

func seedUser(store *fakeStore, username, email string, role entity.UserRole) *entity.User {
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username: username,
		Email:    email,
		Role:     role,
	}
	store.users[user.ID] = user
	return user
}

func seedSuperuser(store *fakeStore, username, email string) *entity.User {
	user := seedUser(store, username, email, entity.RoleUser)
	user.IsSuperuser = true
	return user
}

func seedCategory(store *fakeStore, name, slug string) *entity.Category {
	now := time.Now()
	category := &entity.Category{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: name,
		Slug: slug,
	}
	store.categories[category.ID] = category
	return category
}

func seedGenre(store *fakeStore, name, slug string) *entity.Genre {
	now := time.Now()
	genre := &entity.Genre{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: name,
		Slug: slug,
	}
	store.genres[genre.ID] = genre
	return genre
}

func seedTitle(store *fakeStore, name string, year int, category *entity.Category) *entity.Title {
	now := time.Now()
	title := &entity.Title{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: name,
		Year: year,
	}
	if category != nil {
		title.CategoryID = &category.ID
	}
	store.titles[title.ID] = title
	return title
}

func linkGenre(store *fakeStore, title *entity.Title, genre *entity.Genre) {
	store.titleGenres = append(store.titleGenres, &entity.TitleGenre{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		TitleID: title.ID,
		GenreID: genre.ID,
	})
}

func seedReview(store *fakeStore, title *entity.Title, author *entity.User, text string, score int) *entity.Review {
	now := time.Now()
	review := &entity.Review{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     text,
		Score:    score,
	}
	store.reviews[review.ID] = review
	return review
}

func seedComment(store *fakeStore, review *entity.Review, author *entity.User, text string) *entity.Comment {
	now := time.Now()
	comment := &entity.Comment{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ReviewID: review.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	store.comments[comment.ID] = comment
	return comment
}

// seedCode stores a confirmation code; the caller keeps the plain text.
func seedCode(t *testing.T, store *fakeStore, user *entity.User, plain string) *entity.ConfirmationCode {
	t.Helper()

	hash, err := auth.HashCode(plain)
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}

	code := &entity.ConfirmationCode{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:    user.ID,
		Email:     user.Email,
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	store.codes = append(store.codes, code)
	return code
}

// ==================== MISC HELPERS ====================

func testConfig() *utils.Config {
	return &utils.Config{
		JWT:  utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
		Code: utils.CodeConfig{ExpiryMinutes: 15, Length: 6},
	}
}

func pageReq(page, perPage int) *request.PaginatedRequest {
	return &request.PaginatedRequest{Page: page, PerPage: perPage}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// asUser builds the authorization request a handler would pass down.
func asUser(user *entity.User, method string) permission.Request {
	return permission.Request{Method: method, Identity: permission.FromUser(user)}
}
