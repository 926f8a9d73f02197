// Package seed provides helpers to create demo data for the application store.
// Everything goes through the services, so seeded data obeys the same
// validation, hashing and ownership rules as API traffic.
package seed

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"devconnector/internal/models"
	"devconnector/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	PostsPerUser int
	// MaxLikes and MaxComments bound the reactions each post receives.
	MaxLikes    int
	MaxComments int
	// Seed makes the generated content reproducible; 0 picks a random seed.
	Seed int64
}

// Result summarizes what a run created.
type Result struct {
	Users    []*models.PublicUser
	Posts    []*models.Post
	Likes    int
	Comments int
}

// Factory builds users, posts, likes and comments through the services.
type Factory struct {
	users *service.UserService
	posts *service.PostService
	faker *gofakeit.Faker
	opts  Options
}

// NewFactory creates a Factory. Zero-valued options get small defaults.
func NewFactory(users *service.UserService, posts *service.PostService, opts Options) *Factory {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.PostsPerUser < 0 {
		opts.PostsPerUser = 0
	} else if opts.PostsPerUser == 0 {
		opts.PostsPerUser = 3
	}
	return &Factory{
		users: users,
		posts: posts,
		faker: gofakeit.New(opts.Seed),
		opts:  opts,
	}
}

// Run creates users, their posts and cross-user likes and comments.
func (f *Factory) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	for i := 0; i < f.opts.NumUsers; i++ {
		user, err := f.CreateUser(ctx, i)
		if err != nil {
			return res, fmt.Errorf("seed user %d: %w", i, err)
		}
		res.Users = append(res.Users, user)
	}

	for _, user := range res.Users {
		for j := 0; j < f.opts.PostsPerUser; j++ {
			post, err := f.CreatePost(ctx, user)
			if err != nil {
				return res, fmt.Errorf("seed post for %s: %w", user.ID, err)
			}
			res.Posts = append(res.Posts, post)
		}
	}

	for _, post := range res.Posts {
		likes, err := f.react(ctx, post, res.Users)
		if err != nil {
			return res, err
		}
		res.Likes += likes

		comments, err := f.comment(ctx, post, res.Users)
		if err != nil {
			return res, err
		}
		res.Comments += comments
	}

	return res, nil
}

// CreateUser registers a fake account. The index keeps generated emails unique.
func (f *Factory) CreateUser(ctx context.Context, index int) (*models.PublicUser, error) {
	email := fmt.Sprintf("%s.%d@devconnector.test", strings.ToLower(f.faker.Username()), index)
	return f.users.Register(ctx, service.RegisterInput{
		Name:      clip(f.faker.Name(), 30),
		Email:     email,
		Password:  DefaultPassword,
		Password2: DefaultPassword,
	})
}

// CreatePost publishes a fake post owned by user.
func (f *Factory) CreatePost(ctx context.Context, user *models.PublicUser) (*models.Post, error) {
	return f.posts.CreatePost(ctx, service.CreatePostInput{
		UserID: user.ID,
		Text:   f.text(),
		Name:   user.Name,
		Avatar: f.avatar(),
	})
}

// react has up to MaxLikes distinct users, never the owner, like post.
func (f *Factory) react(ctx context.Context, post *models.Post, users []*models.PublicUser) (int, error) {
	if f.opts.MaxLikes <= 0 || len(users) < 2 {
		return 0, nil
	}
	want := f.faker.Number(0, f.opts.MaxLikes)
	start := f.faker.Number(0, len(users)-1)
	liked := 0
	for k := 0; k < len(users) && liked < want; k++ {
		u := users[(start+k)%len(users)]
		if u.ID == post.UserID {
			continue
		}
		if _, err := f.posts.LikePost(ctx, post.ID, u.ID); err != nil {
			return liked, fmt.Errorf("seed like on %s: %w", post.ID, err)
		}
		liked++
	}
	return liked, nil
}

func (f *Factory) comment(ctx context.Context, post *models.Post, users []*models.PublicUser) (int, error) {
	if f.opts.MaxComments <= 0 || len(users) == 0 {
		return 0, nil
	}
	n := f.faker.Number(0, f.opts.MaxComments)
	for k := 0; k < n; k++ {
		u := users[f.faker.Number(0, len(users)-1)]
		_, _, err := f.posts.AddComment(ctx, post.ID, service.CommentInput{
			UserID: u.ID,
			Text:   f.text(),
			Name:   u.Name,
			Avatar: f.avatar(),
		})
		if err != nil {
			return k, fmt.Errorf("seed comment on %s: %w", post.ID, err)
		}
	}
	return n, nil
}

// text returns between 10 and 300 characters of filler.
func (f *Factory) text() string {
	s := f.faker.Sentence(f.faker.Number(4, 20))
	for utf8.RuneCountInString(s) < 10 {
		s += " " + f.faker.Word()
	}
	return clip(s, 300)
}

func (f *Factory) avatar() string {
	return fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID())
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
