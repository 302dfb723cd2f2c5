package mysql

import (
	"context"
	"database/sql"

	"placefinder/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertPost(ctx context.Context, p domain.Post) error {
	var published any
	if p.PublishedAt != nil {
		published = *p.PublishedAt
	}
	_, err := r.db.ExecContext(ctx, upsertPostSQL,
		p.Slug,
		p.Title,
		valStr(p.Excerpt),
		p.Body,
		valStr(p.Author),
		published,
	)
	return err
}

func (r *Repo) GetPost(ctx context.Context, slug string) (domain.Post, error) {
	row := r.db.QueryRowContext(ctx, getPostSQL, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return domain.Post{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) ListPosts(ctx context.Context, limit int) (domain.PostsPage, error) {
	rows, err := r.db.QueryContext(ctx, listPostsSQL, limit)
	if err != nil {
		return domain.PostsPage{}, err
	}
	defer rows.Close()

	var out []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return domain.PostsPage{}, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return domain.PostsPage{}, err
	}
	return domain.PostsPage{Items: out}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (domain.Post, error) {
	var (
		p         domain.Post
		excerpt   sql.NullString
		author    sql.NullString
		published sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Slug, &p.Title, &excerpt, &p.Body, &author, &published); err != nil {
		return domain.Post{}, err
	}
	if excerpt.Valid {
		e := excerpt.String
		p.Excerpt = &e
	}
	if author.Valid {
		a := author.String
		p.Author = &a
	}
	if published.Valid {
		t := published.Time
		p.PublishedAt = &t
	}
	return p, nil
}
