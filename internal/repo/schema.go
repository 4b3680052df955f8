package repo

import "context"

// EnsureSchema applies the idempotent DDL on startup. Statements run
// one by one so a failure points at the broken table.
func EnsureSchema(ctx context.Context, d *DB) error {
	for _, q := range schemaStatements {
		if _, err := d.Pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS persons(
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		phone         TEXT NOT NULL DEFAULT '',
		is_active     BOOLEAN NOT NULL DEFAULT true,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_login    TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS workspaces(
		id         BIGSERIAL PRIMARY KEY,
		prefix_url TEXT NOT NULL UNIQUE,
		owned_by   BIGINT NOT NULL REFERENCES persons(id) ON DELETE RESTRICT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS workspace_participants(
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		person_id    BIGINT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		PRIMARY KEY(workspace_id, person_id)
	)`,
	`CREATE TABLE IF NOT EXISTS projects(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		key          TEXT NOT NULL,
		owned_by     BIGINT REFERENCES persons(id) ON DELETE SET NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE(workspace_id, title),
		UNIQUE(workspace_id, key)
	)`,
	`CREATE TABLE IF NOT EXISTS issue_type_categories(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id   BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		is_subtask   BOOLEAN NOT NULL DEFAULT false,
		is_default   BOOLEAN NOT NULL DEFAULT false,
		ordering     INT NOT NULL DEFAULT 0,
		UNIQUE(project_id, title)
	)`,
	`CREATE TABLE IF NOT EXISTS issue_state_categories(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id   BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		is_default   BOOLEAN NOT NULL DEFAULT false,
		is_done      BOOLEAN NOT NULL DEFAULT false,
		ordering     INT NOT NULL DEFAULT 0,
		UNIQUE(project_id, title)
	)`,
	`CREATE TABLE IF NOT EXISTS issue_estimation_categories(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id   BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		value        INT NOT NULL,
		UNIQUE(project_id, title),
		UNIQUE(project_id, value)
	)`,
	`CREATE TABLE IF NOT EXISTS issues(
		id                     BIGSERIAL PRIMARY KEY,
		workspace_id           BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id             BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		number                 INT NOT NULL,
		title                  TEXT NOT NULL,
		description            TEXT NOT NULL DEFAULT '',
		type_category_id       BIGINT REFERENCES issue_type_categories(id) ON DELETE SET NULL,
		state_category_id      BIGINT REFERENCES issue_state_categories(id) ON DELETE SET NULL,
		estimation_category_id BIGINT REFERENCES issue_estimation_categories(id) ON DELETE SET NULL,
		assignee_id            BIGINT REFERENCES persons(id) ON DELETE SET NULL,
		created_by             BIGINT REFERENCES persons(id) ON DELETE SET NULL,
		updated_by             BIGINT REFERENCES persons(id) ON DELETE SET NULL,
		ordering               INT NOT NULL DEFAULT 0,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE(project_id, number),
		UNIQUE(project_id, title)
	)`,
	`CREATE TABLE IF NOT EXISTS issue_history(
		id           BIGSERIAL PRIMARY KEY,
		issue_id     BIGINT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		edited_field TEXT NOT NULL,
		before_value TEXT NOT NULL DEFAULT 'None',
		after_value  TEXT NOT NULL DEFAULT 'None',
		changed_by   BIGINT REFERENCES persons(id) ON DELETE SET NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS issue_messages(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id   BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		issue_id     BIGINT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		description  TEXT NOT NULL DEFAULT '',
		created_by   BIGINT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sprints(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id   BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title        TEXT NOT NULL DEFAULT 'New Sprint',
		goal         TEXT NOT NULL DEFAULT '',
		is_started   BOOLEAN NOT NULL DEFAULT false,
		is_completed BOOLEAN NOT NULL DEFAULT false,
		started_at   TIMESTAMPTZ,
		finished_at  TIMESTAMPTZ
	)`,
	// An issue lives in at most one sprint; everything else is backlog.
	`CREATE TABLE IF NOT EXISTS sprint_issues(
		sprint_id BIGINT NOT NULL REFERENCES sprints(id) ON DELETE CASCADE,
		issue_id  BIGINT NOT NULL UNIQUE REFERENCES issues(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS project_working_days(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id   BIGINT NOT NULL UNIQUE REFERENCES projects(id) ON DELETE CASCADE,
		timezone     TEXT NOT NULL DEFAULT 'UTC',
		monday       BOOLEAN NOT NULL DEFAULT true,
		tuesday      BOOLEAN NOT NULL DEFAULT true,
		wednesday    BOOLEAN NOT NULL DEFAULT true,
		thursday     BOOLEAN NOT NULL DEFAULT true,
		friday       BOOLEAN NOT NULL DEFAULT true,
		saturday     BOOLEAN NOT NULL DEFAULT false,
		sunday       BOOLEAN NOT NULL DEFAULT false,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS project_non_working_days(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id   BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		date         DATE NOT NULL,
		UNIQUE(project_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS sprint_efforts_history(
		id           BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		project_id   BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		sprint_id    BIGINT NOT NULL REFERENCES sprints(id) ON DELETE CASCADE,
		point_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		total_value  INT NOT NULL,
		done_value   INT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_efforts_sprint_point_at
		ON sprint_efforts_history(sprint_id, point_at)`,
	`CREATE TABLE IF NOT EXISTS participation_requests(
		id            BIGSERIAL PRIMARY KEY,
		kind          TEXT NOT NULL,
		key           TEXT NOT NULL,
		email         TEXT NOT NULL,
		prefix_url    TEXT NOT NULL DEFAULT '',
		workspace_id  BIGINT REFERENCES workspaces(id) ON DELETE CASCADE,
		is_email_sent BOOLEAN NOT NULL DEFAULT false,
		is_accepted   BOOLEAN NOT NULL DEFAULT false,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		expired_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_key_expired
		ON participation_requests(key, expired_at DESC)`,
}
