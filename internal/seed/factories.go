// Package seed provides helpers to create demo data for development and
// testing. It writes through the repository port, so every store driver can
// be seeded the same way.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Folio!Demo2024"

var categories = []string{
	"go", "databases", "devops", "frontend", "career", "notes",
	"performance", "testing", "security", "tooling",
}

// Factory builds domain entities and persists them through a Store.
type Factory struct {
	store *repository.Store
	opts  Options
	faker *gofakeit.Faker
	rng   *rand.Rand
	hash  string
	seq   int
}

// NewFactory creates a Factory bound to store. A zero opts.RandSeed seeds from
// the clock.
func NewFactory(store *repository.Store, opts Options) (*Factory, error) {
	opts = opts.withDefaults()
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	return &Factory{
		store: store,
		opts:  opts,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
		hash:  string(hash),
	}, nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// pastTime returns a moment within the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rng.Int63n(int64(f.opts.MaxDays) * int64(24*time.Hour)))
	return time.Now().UTC().Add(-back).Truncate(time.Second)
}

// after returns a moment between t and now.
func (f *Factory) after(t time.Time) time.Time {
	gap := time.Since(t)
	if gap <= 0 {
		return t
	}
	return t.Add(time.Duration(f.rng.Int63n(int64(gap)))).Truncate(time.Second)
}

// BuildUser constructs a user without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	f.seq++
	first, last := f.faker.FirstName(), f.faker.LastName()
	local := validation.Slugify(first + " " + last)
	if local == "" {
		local = "reader"
	}
	image := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID())
	ts := f.pastTime()

	user := &models.User{
		ID:        newID(),
		Name:      first + " " + last,
		Email:     fmt.Sprintf("%s.%d@example.com", local, f.seq),
		Password:  f.hash,
		Image:     &image,
		Bio:       f.faker.Sentence(10),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and stores a user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by author without persisting it.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	f.seq++
	title := strings.TrimRight(f.faker.Sentence(3+f.rng.Intn(5)), ".")
	base := validation.Slugify(title)
	if len(base) > 80 {
		base = strings.Trim(base[:80], "-")
	}
	if base == "" {
		base = "post"
	}

	picked := map[string]bool{}
	for i := 0; i < 1+f.rng.Intn(3); i++ {
		picked[categories[f.rng.Intn(len(categories))]] = true
	}
	cats := make([]string, 0, len(picked))
	for _, c := range categories {
		if picked[c] {
			cats = append(cats, c)
		}
	}

	ts := f.after(author.CreatedAt)
	post := &models.Post{
		ID:         newID(),
		Slug:       fmt.Sprintf("%s-%d", base, f.seq),
		Title:      title,
		Content:    f.faker.Paragraph(2+f.rng.Intn(3), 4, 12, "\n\n"),
		AuthorID:   author.ID,
		Categories: cats,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and stores a post.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.store.Posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment stores a comment on post, as a reply when parent is set, and
// keeps the post's comment counter in step.
func (f *Factory) CreateComment(ctx context.Context, post *models.Post, author *models.User, parent *models.Comment) (*models.Comment, error) {
	since := post.CreatedAt
	var parentID *string
	if parent != nil {
		since = parent.CreatedAt
		id := parent.ID
		parentID = &id
	}
	ts := f.after(since)

	comment := &models.Comment{
		ID:        newID(),
		PostID:    post.ID,
		AuthorID:  author.ID,
		Content:   f.faker.Sentence(4 + f.rng.Intn(16)),
		ParentID:  parentID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := f.store.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := f.store.Posts.IncrementCounter(ctx, post.ID, models.CounterComments, 1); err != nil {
		return nil, err
	}
	return comment, nil
}

// Like records user's like on post and reports whether it was new.
func (f *Factory) Like(ctx context.Context, post *models.Post, user *models.User) (bool, error) {
	added, err := f.store.Likes.Add(ctx, post.ID, user.ID)
	if err != nil || !added {
		return false, err
	}
	if err := f.store.Posts.IncrementCounter(ctx, post.ID, models.CounterLikes, 1); err != nil {
		return false, err
	}
	return true, nil
}
