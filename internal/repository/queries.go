package repository

// SQL shared by the Postgres and SQLite repositories. Placeholders use the
// Postgres $n form; SQLiteRepo rewrites them to ?n. Vote score and engagement
// counts come from pre-aggregated sub-selects so a video's score is always the
// live sum of its votes regardless of how many comments it has.

const videoColumns = `
	CAST(v.id AS TEXT) AS id,
	CAST(v.owner_user_id AS TEXT) AS owner_user_id,
	v.target_type,
	CAST(v.target_id AS TEXT) AS target_id,
	v.storage_bucket,
	v.storage_key,
	v.content_type,
	v.duration_seconds,
	v.created_at,
	COALESCE(vs.score, 0) AS vote_score`

const voteAggregate = `
	LEFT JOIN (
		SELECT target_id, SUM(value) AS score, COUNT(*) AS vote_count
		FROM votes
		WHERE target_type = 'video'
		GROUP BY target_id
	) vs ON vs.target_id = v.id`

const commentAggregate = `
	LEFT JOIN (
		SELECT target_id, COUNT(*) AS comment_count
		FROM comments
		WHERE target_type = 'video'
		GROUP BY target_id
	) cs ON cs.target_id = v.id`

const notViewed = `
	v.id NOT IN (SELECT vv.video_id FROM video_views vv WHERE vv.user_id = $1)`

// $1 user, $2 limit.
const collaborativeQuery = `
	SELECT` + videoColumns + `
	FROM videos v` + voteAggregate + `
	WHERE v.id IN (
		SELECT n.target_id
		FROM votes n
		WHERE n.target_type = 'video'
		  AND n.value = 1
		  AND n.user_id IN (
			SELECT DISTINCT peer.user_id
			FROM votes mine
			JOIN votes peer
			  ON peer.target_type = 'video'
			 AND peer.value = 1
			 AND peer.target_id = mine.target_id
			WHERE mine.target_type = 'video'
			  AND mine.value = 1
			  AND mine.user_id = $1
			  AND peer.user_id <> $1
		  )
	)
	AND` + notViewed + `
	ORDER BY v.created_at DESC, v.id
	LIMIT $2`

// $1 user, $2 since, $3 limit.
const popularQuery = `
	SELECT` + videoColumns + `
	FROM videos v` + voteAggregate + `
	WHERE v.created_at > $2
	AND` + notViewed + `
	ORDER BY COALESCE(vs.score, 0) DESC, v.created_at DESC, v.id
	LIMIT $3`

// $1 user, $2 since, $3 limit.
const interactiveQuery = `
	SELECT` + videoColumns + `
	FROM videos v` + voteAggregate + commentAggregate + `
	WHERE v.created_at > $2
	AND` + notViewed + `
	ORDER BY COALESCE(vs.vote_count, 0) + 2 * COALESCE(cs.comment_count, 0) DESC, v.created_at DESC, v.id
	LIMIT $3`

// $1 target type, $2 target id, $3 limit, $4 offset.
const byTargetQuery = `
	SELECT` + videoColumns + `
	FROM videos v` + voteAggregate + `
	WHERE v.target_type = $1 AND v.target_id = $2
	ORDER BY v.created_at DESC, v.id
	LIMIT $3 OFFSET $4`

// $1 user, $2 limit, $3 offset.
const bookmarkedQuery = `
	SELECT` + videoColumns + `
	FROM videos v
	JOIN bookmarks b ON b.video_id = v.id` + voteAggregate + `
	WHERE b.user_id = $1
	ORDER BY b.created_at DESC, b.id DESC
	LIMIT $2 OFFSET $3`

const resetViewsQuery = `DELETE FROM video_views WHERE user_id = $1`

const markViewedQuery = `
	INSERT INTO video_views (user_id, video_id) VALUES ($1, $2)
	ON CONFLICT (user_id, video_id) DO NOTHING`

const deleteBookmarkQuery = `DELETE FROM bookmarks WHERE user_id = $1 AND video_id = $2`

const insertBookmarkQuery = `INSERT INTO bookmarks (user_id, video_id) VALUES ($1, $2)`

const insertVideoQuery = `
	INSERT INTO videos (id, owner_user_id, target_type, target_id, storage_bucket,
	                    storage_key, content_type, duration_seconds, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const upsertVoteQuery = `
	INSERT INTO votes (user_id, target_type, target_id, value)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, target_type, target_id)
	DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

const deleteVoteQuery = `
	DELETE FROM votes WHERE user_id = $1 AND target_type = $2 AND target_id = $3`

const insertCommentQuery = `
	INSERT INTO comments (id, author_user_id, target_type, target_id, body_markdown, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

const countVideosQuery = `SELECT COUNT(*) FROM videos`
