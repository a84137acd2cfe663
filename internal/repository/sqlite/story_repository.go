package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storyhub/internal/domain"
	"storyhub/internal/repository"
)

const createStoriesTable = `
CREATE TABLE IF NOT EXISTS stories (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	excerpt TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	story_type TEXT NOT NULL DEFAULT 'free',
	price INTEGER NULL,
	likes INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

type StoryRepository struct {
	db *sql.DB
}

func NewStoryRepository(db *sql.DB) repository.StoryRepository {
	return &StoryRepository{db: db}
}

func (r *StoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStoriesTable); err != nil {
		return fmt.Errorf("create stories table: %w", err)
	}
	return nil
}

func (r *StoryRepository) Create(ctx context.Context, story *domain.Story) error {
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now().UTC()
	}

	tags, err := json.Marshal(story.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	var price sql.NullInt64
	if story.Price != nil {
		price = sql.NullInt64{Int64: *story.Price, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO stories (id, user_id, title, excerpt, body, tags, story_type, price, likes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		story.ID,
		story.UserID,
		story.Title,
		story.Excerpt,
		story.Body,
		string(tags),
		string(story.Type),
		price,
		story.Likes,
		story.CreatedAt,
	)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert story: %w", err)
	}
	return nil
}

func (r *StoryRepository) Get(ctx context.Context, id string) (*domain.Story, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, title, excerpt, body, tags, story_type, price, likes, created_at
FROM stories
WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query story: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query story: %w", err)
		}
		return nil, fmt.Errorf("story: %w", domain.ErrNotFound)
	}
	return scanStory(rows)
}

// List matches the query as a literal substring of title, excerpt or body.
// sqlite's LIKE is case-insensitive for ASCII, which is the documented
// search policy; LIKE metacharacters in the query are escaped so they match
// themselves.
func (r *StoryRepository) List(ctx context.Context, query string) ([]domain.Story, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if query == "" {
		rows, err = r.db.QueryContext(ctx, `
SELECT id, user_id, title, excerpt, body, tags, story_type, price, likes, created_at
FROM stories
ORDER BY created_at DESC, id DESC`)
	} else {
		pattern := "%" + escapeLike(query) + "%"
		rows, err = r.db.QueryContext(ctx, `
SELECT id, user_id, title, excerpt, body, tags, story_type, price, likes, created_at
FROM stories
WHERE title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'
ORDER BY created_at DESC, id DESC`,
			pattern, pattern, pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var stories []domain.Story
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return stories, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete story rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("story: %w", domain.ErrNotFound)
	}
	return nil
}

func scanStory(rows *sql.Rows) (*domain.Story, error) {
	var (
		story     domain.Story
		tags      string
		storyType string
		price     sql.NullInt64
	)
	if err := rows.Scan(
		&story.ID,
		&story.UserID,
		&story.Title,
		&story.Excerpt,
		&story.Body,
		&tags,
		&storyType,
		&price,
		&story.Likes,
		&story.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("story: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan story: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &story.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	story.Type = domain.StoryType(storyType)
	if price.Valid {
		story.Price = &price.Int64
	}
	return &story, nil
}
