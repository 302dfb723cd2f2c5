package mysql

const upsertPostSQL = `
INSERT INTO posts
  (slug, title, excerpt, body, author, published_at)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title        = VALUES(title),
  excerpt      = VALUES(excerpt),
  body         = VALUES(body),
  author       = VALUES(author),
  published_at = VALUES(published_at),
  updated_at   = CURRENT_TIMESTAMP
`

const getPostSQL = `
SELECT id, slug, title, excerpt, body, author, published_at
FROM posts
WHERE slug = ? AND published_at IS NOT NULL
`

// Newest first; drafts (NULL published_at) are excluded from the public list.
const listPostsSQL = `
SELECT id, slug, title, excerpt, body, author, published_at
FROM posts
WHERE published_at IS NOT NULL
ORDER BY published_at DESC, id DESC
LIMIT ?
`
