package db

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(64) PRIMARY KEY,
	email VARCHAR(320) UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	profile_image_url TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL DEFAULT '',
	role VARCHAR(32) NOT NULL DEFAULT 'user',
	created_at {{ts}} NOT NULL,
	updated_at {{ts}} NOT NULL
);
CREATE TABLE IF NOT EXISTS forms (
	id VARCHAR(64) PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_by VARCHAR(64) NOT NULL,
	questions {{json}} NOT NULL,
	workflow_config {{json}} NOT NULL,
	is_published BOOLEAN NOT NULL DEFAULT FALSE,
	created_at {{ts}} NOT NULL,
	updated_at {{ts}} NOT NULL
);
CREATE INDEX IF NOT EXISTS forms_created_by_idx ON forms (created_by, created_at);
CREATE TABLE IF NOT EXISTS form_responses (
	id VARCHAR(64) PRIMARY KEY,
	form_id VARCHAR(64) NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
	respondent_email TEXT NOT NULL DEFAULT '',
	respondent_name TEXT NOT NULL DEFAULT '',
	responses {{json}} NOT NULL,
	ai_enhanced_responses {{json}} NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'submitted',
	submitted_at {{ts}} NOT NULL,
	reviewed_at {{ts}},
	reviewed_by VARCHAR(64) NOT NULL DEFAULT '',
	version BIGINT NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS form_responses_form_idx ON form_responses (form_id, submitted_at);
CREATE TABLE IF NOT EXISTS ai_prompts (
	id VARCHAR(64) PRIMARY KEY,
	form_id VARCHAR(64) NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
	question_id VARCHAR(128) NOT NULL,
	prompt TEXT NOT NULL,
	tone VARCHAR(16) NOT NULL DEFAULT 'professional',
	length VARCHAR(16) NOT NULL DEFAULT 'moderate',
	created_at {{ts}} NOT NULL,
	UNIQUE (form_id, question_id)
);
`

// Schema returns the DDL statements for the dialect.
func (d Dialect) Schema() []string {
	ddl := strings.NewReplacer("{{json}}", d.jsonType(), "{{ts}}", d.timestampType()).Replace(schemaTemplate)
	var stmts []string
	for _, s := range strings.Split(ddl, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// Migrate creates missing tables and indexes.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := d.Dialect.Schema()
	for _, stmt := range stmts {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: migrate: %w", err)
		}
	}
	log.WithFields(log.Fields{"dialect": d.Dialect.String(), "statements": len(stmts)}).Debug("db: schema ready")
	return nil
}
