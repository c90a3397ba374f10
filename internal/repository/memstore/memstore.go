// Package memstore is a process-local implementation of the repository port.
// Nothing survives a restart; it backs tests and STORE_DRIVER=memory.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"folio/internal/models"
	"folio/internal/repository"
)

// DB holds every collection behind one lock so counter updates and membership
// changes are atomic with respect to each other.
type DB struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]*models.User
	posts    map[string]*models.Post
	comments map[string]*commentRow
	likes    map[string]map[string]struct{} // post id -> user ids
}

type commentRow struct {
	seq     int64
	comment models.Comment
}

// New returns an empty in-memory database.
func New() *DB {
	return &DB{
		users:    make(map[string]*models.User),
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*commentRow),
		likes:    make(map[string]map[string]struct{}),
	}
}

// NewStore wires every repository to a fresh in-memory database.
func NewStore() *repository.Store {
	return New().Store()
}

// Store exposes db through the repository interfaces.
func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Users:    &userRepo{db},
		Posts:    &postRepo{db},
		Comments: &commentRepo{db},
		Likes:    &likeRepo{db},
	}
}

// CommentCount reports how many comments are stored across all posts.
func (db *DB) CommentCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.comments)
}

type userRepo struct{ db *DB }

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[user.ID]; ok {
		return models.NewConflictError("User already exists")
	}
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return models.NewConflictError("User already exists")
		}
	}
	cp := *user
	r.db.users[user.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[user.ID]; !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	cp := *user
	r.db.users[user.ID] = &cp
	return nil
}

type postRepo struct{ db *DB }

func clonePost(p *models.Post) *models.Post {
	cp := *p
	cp.Categories = append([]string(nil), p.Categories...)
	cp.Author = nil
	cp.Liked = false
	return &cp
}

func (r *postRepo) Create(_ context.Context, post *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.posts {
		if p.Slug == post.Slug {
			return models.NewConflictError(fmt.Sprintf("Slug %q is already taken", post.Slug))
		}
	}
	r.db.posts[post.ID] = clonePost(post)
	return nil
}

func (r *postRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	return clonePost(p), nil
}

func (r *postRepo) GetBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.posts {
		if p.Slug == slug {
			return clonePost(p), nil
		}
	}
	return nil, models.NewNotFoundError("Post", slug)
}

func (r *postRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	if models.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *postRepo) List(_ context.Context, limit, offset int, category string) ([]*models.Post, error) {
	r.db.mu.RLock()
	var posts []*models.Post
	for _, p := range r.db.posts {
		if category != "" && !containsFold(p.Categories, category) {
			continue
		}
		posts = append(posts, clonePost(p))
	}
	r.db.mu.RUnlock()

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	if offset >= len(posts) {
		return []*models.Post{}, nil
	}
	posts = posts[offset:]
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts, nil
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func (r *postRepo) Update(_ context.Context, post *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.posts[post.ID]
	if !ok {
		return models.NewNotFoundError("Post", post.ID)
	}
	for id, p := range r.db.posts {
		if id != post.ID && p.Slug == post.Slug {
			return models.NewConflictError(fmt.Sprintf("Slug %q is already taken", post.Slug))
		}
	}
	cur.Slug = post.Slug
	cur.Title = post.Title
	cur.Content = post.Content
	cur.Categories = append([]string(nil), post.Categories...)
	cur.UpdatedAt = post.UpdatedAt
	return nil
}

func (r *postRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.posts[id]; !ok {
		return models.NewNotFoundError("Post", id)
	}
	delete(r.db.posts, id)
	return nil
}

func (r *postRepo) IncrementCounter(_ context.Context, postID string, field models.CounterField, delta int64) error {
	if !field.Valid() {
		return fmt.Errorf("unknown post counter %q", field)
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	switch field {
	case models.CounterViews:
		p.ViewsCount += delta
	case models.CounterComments:
		p.CommentsCount += delta
	case models.CounterLikes:
		p.LikesCount += delta
	}
	return nil
}

type commentRepo struct{ db *DB }

func cloneComment(c *models.Comment) *models.Comment {
	cp := *c
	if c.ParentID != nil {
		parent := *c.ParentID
		cp.ParentID = &parent
	}
	cp.Author = nil
	cp.Replies = nil
	return &cp
}

func (r *commentRepo) Create(_ context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.comments[comment.ID]; ok {
		return models.NewConflictError("Comment already exists")
	}
	r.db.seq++
	r.db.comments[comment.ID] = &commentRow{seq: r.db.seq, comment: *cloneComment(comment)}
	return nil
}

func (r *commentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	row, ok := r.db.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return cloneComment(&row.comment), nil
}

// ListByPost returns comments in insertion order, which is creation order.
func (r *commentRepo) ListByPost(_ context.Context, postID string) ([]*models.Comment, error) {
	r.db.mu.RLock()
	rows := make([]*commentRow, 0)
	for _, row := range r.db.comments {
		if row.comment.PostID == postID {
			rows = append(rows, row)
		}
	}
	r.db.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*models.Comment, len(rows))
	for i, row := range rows {
		out[i] = cloneComment(&row.comment)
	}
	return out, nil
}

func (r *commentRepo) Update(_ context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.comments[comment.ID]
	if !ok {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	row.comment.Content = comment.Content
	row.comment.UpdatedAt = comment.UpdatedAt
	return nil
}

func (r *commentRepo) Delete(_ context.Context, ids ...string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var removed int64
	for _, id := range ids {
		if _, ok := r.db.comments[id]; ok {
			delete(r.db.comments, id)
			removed++
		}
	}
	return removed, nil
}

func (r *commentRepo) DeleteByPost(_ context.Context, postID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, row := range r.db.comments {
		if row.comment.PostID == postID {
			delete(r.db.comments, id)
		}
	}
	return nil
}

type likeRepo struct{ db *DB }

func (r *likeRepo) IsLiked(_ context.Context, postID, userID string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	_, ok := r.db.likes[postID][userID]
	return ok, nil
}

func (r *likeRepo) Add(_ context.Context, postID, userID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	set, ok := r.db.likes[postID]
	if !ok {
		set = make(map[string]struct{})
		r.db.likes[postID] = set
	}
	if _, exists := set[userID]; exists {
		return false, nil
	}
	set[userID] = struct{}{}
	return true, nil
}

func (r *likeRepo) Remove(_ context.Context, postID, userID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	set := r.db.likes[postID]
	if _, exists := set[userID]; !exists {
		return false, nil
	}
	delete(set, userID)
	return true, nil
}

func (r *likeRepo) ListUserIDs(_ context.Context, postID string) ([]string, error) {
	r.db.mu.RLock()
	ids := make([]string, 0, len(r.db.likes[postID]))
	for id := range r.db.likes[postID] {
		ids = append(ids, id)
	}
	r.db.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

func (r *likeRepo) DeleteByPost(_ context.Context, postID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.likes, postID)
	return nil
}
