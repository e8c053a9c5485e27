package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"rumorplaza/internal/kv"
	"rumorplaza/internal/models"
	"rumorplaza/internal/observability"
)

// Keys of the local namespace.
const (
	PostsKey    = "rumor_plaza_posts_v4"
	CommentsKey = "rumor_plaza_comments_v4"
	LikedKey    = "rumor_plaza_liked"
)

const localName = "local"

// storedPost is the persisted shape of a post. Unlike models.Post it keeps
// the password.
type storedPost struct {
	ID           string          `json:"id"`
	Category     models.Category `json:"category"`
	Nickname     string          `json:"nickname"`
	Password     string          `json:"password"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	Images       []string        `json:"images"`
	Views        int             `json:"views"`
	Likes        int             `json:"likes"`
	CommentCount int             `json:"commentCount"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func toStored(p *models.Post) storedPost {
	return storedPost{
		ID:           p.ID,
		Category:     p.Category,
		Nickname:     p.Nickname,
		Password:     p.Password,
		Title:        p.Title,
		Content:      p.Content,
		Images:       p.Images,
		Views:        p.Views,
		Likes:        p.Likes,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
	}
}

func (sp storedPost) toPost() *models.Post {
	images := make([]string, len(sp.Images))
	copy(images, sp.Images)
	return &models.Post{
		ID:           sp.ID,
		Category:     sp.Category,
		Nickname:     sp.Nickname,
		Password:     sp.Password,
		Title:        sp.Title,
		Content:      sp.Content,
		Images:       images,
		Views:        sp.Views,
		Likes:        sp.Likes,
		CommentCount: sp.CommentCount,
		CreatedAt:    sp.CreatedAt,
	}
}

// localStore implements Store by rewriting whole JSON collections in a kv
// namespace. The mutex serializes callers in this process only; another
// process sharing the namespace can overwrite concurrent writes.
type localStore struct {
	ns     kv.Namespace
	opts   options
	log    *observability.RepoLogger
	mu     sync.Mutex
	seeded bool
	lastID int64
}

// NewLocalStore creates a Store persisted in ns. Missing collections are
// seeded from the built-in fixtures on first use.
func NewLocalStore(ns kv.Namespace, opts ...Option) Store {
	return &localStore{
		ns:   ns,
		opts: buildOptions(opts),
		log:  observability.NewRepoLogger(localName, "namespace"),
	}
}

func (s *localStore) Name() string { return localName }

func (s *localStore) Ping(ctx context.Context) error {
	_, _, err := s.ns.Get(ctx, PostsKey)
	return err
}

// seed writes the fixtures under any key that is absent. Callers hold s.mu.
func (s *localStore) seed(ctx context.Context) error {
	if s.seeded {
		return nil
	}
	now := s.opts.now()
	fixtures := map[string]func() any{
		PostsKey: func() any {
			posts := FixturePosts(now)
			out := make([]storedPost, len(posts))
			for i, p := range posts {
				out[i] = toStored(p)
			}
			return out
		},
		CommentsKey: func() any { return FixtureComments(now) },
		LikedKey:    func() any { return map[string][]string{} },
	}
	for _, key := range []string{PostsKey, CommentsKey, LikedKey} {
		_, ok, err := s.ns.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
		if ok {
			continue
		}
		if err := s.writeJSON(ctx, key, fixtures[key]()); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
	}
	s.seeded = true
	return nil
}

func (s *localStore) readJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.ns.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *localStore) writeJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.ns.Set(ctx, key, string(raw))
}

func (s *localStore) loadPosts(ctx context.Context) ([]*models.Post, error) {
	var stored []storedPost
	if _, err := s.readJSON(ctx, PostsKey, &stored); err != nil {
		return nil, err
	}
	posts := make([]*models.Post, len(stored))
	for i, sp := range stored {
		posts[i] = sp.toPost()
	}
	return posts, nil
}

func (s *localStore) savePosts(ctx context.Context, posts []*models.Post) error {
	stored := make([]storedPost, len(posts))
	for i, p := range posts {
		stored[i] = toStored(p)
	}
	return s.writeJSON(ctx, PostsKey, stored)
}

func (s *localStore) loadComments(ctx context.Context) ([]*models.Comment, error) {
	var comments []*models.Comment
	if _, err := s.readJSON(ctx, CommentsKey, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *localStore) saveComments(ctx context.Context, comments []*models.Comment) error {
	if comments == nil {
		comments = []*models.Comment{}
	}
	return s.writeJSON(ctx, CommentsKey, comments)
}

// loadLiked returns the liked post ids per client id.
func (s *localStore) loadLiked(ctx context.Context) (map[string][]string, error) {
	liked := map[string][]string{}
	if _, err := s.readJSON(ctx, LikedKey, &liked); err != nil {
		return nil, err
	}
	return liked, nil
}

// withLock runs fn with the namespace seeded and the process lock held.
func (s *localStore) withLock(ctx context.Context, op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seed(ctx); err != nil {
		s.log.LogError(ctx, err, op)
		return err
	}
	if err := fn(); err != nil {
		s.log.LogError(ctx, err, op)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// nextID returns a timestamp-derived id that is unique within taken and
// strictly greater than any id this store handed out before.
func (s *localStore) nextID(taken func(string) bool) string {
	id := s.opts.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for taken(strconv.FormatInt(id, 10)) {
		id++
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func findLocalPost(posts []*models.Post, id string) (int, *models.Post) {
	for i, p := range posts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (s *localStore) readPosts(ctx context.Context, op string, filter func(*models.Post) bool) ([]*models.Post, error) {
	var out []*models.Post
	err := s.withLock(ctx, op, func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		out = make([]*models.Post, 0, len(posts))
		for _, p := range posts {
			if filter == nil || filter(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *localStore) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.readPosts(ctx, "list_posts", nil)
}

func (s *localStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post *models.Post
	err := s.withLock(ctx, "get_post", func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		_, post = findLocalPost(posts, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

func (s *localStore) ListPostsByCategory(ctx context.Context, category models.Category) ([]*models.Post, error) {
	if category == models.CategoryAll {
		return s.ListPosts(ctx)
	}
	return s.readPosts(ctx, "list_posts_by_category", func(p *models.Post) bool {
		return p.Category == category
	})
}

func (s *localStore) ListPopularPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	posts, err := s.readPosts(ctx, "list_popular_posts", nil)
	if err != nil {
		return nil, err
	}
	return s.opts.ranking.rank(posts, popularLimit(limit)), nil
}

func (s *localStore) ListRecentPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	posts, err := s.readPosts(ctx, "list_recent_posts", nil)
	if err != nil {
		return nil, err
	}
	return capPosts(posts, recentLimit(limit)), nil
}

func (s *localStore) SearchPosts(ctx context.Context, query string) ([]*models.Post, error) {
	if strings.TrimSpace(query) == "" {
		return []*models.Post{}, nil
	}
	needle := strings.ToLower(query)
	return s.readPosts(ctx, "search_posts", func(p *models.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle) ||
			strings.Contains(strings.ToLower(p.Nickname), needle)
	})
}

func (s *localStore) CreatePost(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	post, err := newPostFromDraft(draft, s.opts.now())
	if err != nil {
		return nil, err
	}
	err = s.withLock(ctx, "create_post", func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		post.ID = s.nextID(func(id string) bool {
			_, p := findLocalPost(posts, id)
			return p != nil
		})
		return s.savePosts(ctx, append([]*models.Post{post}, posts...))
	})
	if err != nil {
		return nil, err
	}
	s.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "category": post.Category})
	return post, nil
}

func (s *localStore) UpdatePost(ctx context.Context, id, password string, patch models.PostPatch) (*models.Post, error) {
	if err := checkPatch(patch); err != nil {
		return nil, err
	}
	var updated *models.Post
	var outcome error
	err := s.withLock(ctx, "update_post", func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		_, post := findLocalPost(posts, id)
		if post == nil {
			outcome = ErrNotFound
			return nil
		}
		if !models.CheckPassword(post.Password, password) {
			outcome = ErrPasswordMismatch
			return nil
		}
		patch.Apply(post)
		updated = post
		if patch.Empty() {
			return nil
		}
		return s.savePosts(ctx, posts)
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}
	s.log.LogUpdate(ctx, map[string]interface{}{"post_id": id})
	return updated, nil
}

func (s *localStore) DeletePost(ctx context.Context, id, password string) (bool, error) {
	deleted := false
	err := s.withLock(ctx, "delete_post", func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		idx, post := findLocalPost(posts, id)
		if post == nil || !models.CheckPassword(post.Password, password) {
			return nil
		}
		comments, err := s.loadComments(ctx)
		if err != nil {
			return err
		}
		liked, err := s.loadLiked(ctx)
		if err != nil {
			return err
		}

		posts = slices.Delete(posts, idx, idx+1)
		comments = slices.DeleteFunc(comments, func(c *models.Comment) bool { return c.PostID == id })
		for client, ids := range liked {
			liked[client] = slices.DeleteFunc(ids, func(pid string) bool { return pid == id })
		}

		if err := s.savePosts(ctx, posts); err != nil {
			return err
		}
		if err := s.saveComments(ctx, comments); err != nil {
			return err
		}
		if err := s.writeJSON(ctx, LikedKey, liked); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
	}
	return deleted, nil
}

func (s *localStore) VerifyPassword(ctx context.Context, id, password string) (bool, error) {
	post, err := s.GetPost(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return models.CheckPassword(post.Password, password), nil
}

func (s *localStore) IncrementViews(ctx context.Context, id string) error {
	return s.withLock(ctx, "increment_views", func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		_, post := findLocalPost(posts, id)
		if post == nil {
			return nil
		}
		post.Views++
		return s.savePosts(ctx, posts)
	})
}

func (s *localStore) ToggleLike(ctx context.Context, postID, clientID string) (models.LikeState, error) {
	var state models.LikeState
	missing := false
	err := s.withLock(ctx, "toggle_like", func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		_, post := findLocalPost(posts, postID)
		if post == nil {
			missing = true
			return nil
		}
		liked, err := s.loadLiked(ctx)
		if err != nil {
			return err
		}

		ids := liked[clientID]
		if slices.Contains(ids, postID) {
			liked[clientID] = slices.DeleteFunc(ids, func(id string) bool { return id == postID })
			if post.Likes > 0 {
				post.Likes--
			}
			state.Liked = false
		} else {
			liked[clientID] = append(ids, postID)
			post.Likes++
			state.Liked = true
		}
		state.Likes = post.Likes

		if err := s.writeJSON(ctx, LikedKey, liked); err != nil {
			return err
		}
		return s.savePosts(ctx, posts)
	})
	if err != nil {
		return models.LikeState{}, err
	}
	if missing {
		return models.LikeState{}, ErrNotFound
	}
	s.log.LogUpdate(ctx, map[string]interface{}{"post_id": postID, "liked": state.Liked, "likes": state.Likes})
	return state, nil
}

func (s *localStore) IsLiked(ctx context.Context, postID, clientID string) (bool, error) {
	var liked bool
	err := s.withLock(ctx, "is_liked", func() error {
		set, err := s.loadLiked(ctx)
		if err != nil {
			return err
		}
		liked = slices.Contains(set[clientID], postID)
		return nil
	})
	return liked, err
}

func (s *localStore) ListCommentsByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	out := []*models.Comment{}
	err := s.withLock(ctx, "list_comments", func() error {
		comments, err := s.loadComments(ctx)
		if err != nil {
			return err
		}
		for _, c := range comments {
			if c.PostID == postID {
				out = append(out, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b *models.Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *localStore) AddComment(ctx context.Context, draft models.CommentDraft) (*models.Comment, error) {
	comment := newCommentFromDraft(draft, s.opts.now())
	missing := false
	err := s.withLock(ctx, "add_comment", func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		_, post := findLocalPost(posts, draft.PostID)
		if post == nil {
			missing = true
			return nil
		}
		comments, err := s.loadComments(ctx)
		if err != nil {
			return err
		}
		comment.ID = s.nextID(func(id string) bool {
			return slices.ContainsFunc(comments, func(c *models.Comment) bool { return c.ID == id })
		})
		if err := s.saveComments(ctx, append([]*models.Comment{comment}, comments...)); err != nil {
			return err
		}
		post.CommentCount++
		return s.savePosts(ctx, posts)
	})
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, ErrNotFound
	}
	s.log.LogCreate(ctx, map[string]interface{}{"post_id": draft.PostID, "comment_id": comment.ID})
	return comment, nil
}
