package database

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates every table the service needs. Safe to call on each
// start: all statements use IF NOT EXISTS. The driver runs one statement per
// Exec, so they are applied in order.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS families (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		family_head_name VARCHAR(255)    NOT NULL,
		contact_number   VARCHAR(20)     NOT NULL,
		num_members      INT UNSIGNED    NOT NULL,
		village_name     VARCHAR(255)    NOT NULL DEFAULT '',
		unique_family_id VARCHAR(16)     NOT NULL,
		created_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_families_contact (contact_number),
		UNIQUE KEY uq_families_label (unique_family_id),
		CONSTRAINT chk_families_members CHECK (num_members >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS distribution_records (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		family_id         BIGINT UNSIGNED NOT NULL,
		rice_received_kg  DECIMAL(10,2)   NOT NULL,
		distribution_date DATE            NOT NULL,
		notes             TEXT            NULL,
		created_at        DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_records_date (distribution_date),
		KEY idx_records_family (family_id),
		CONSTRAINT fk_records_family FOREIGN KEY (family_id) REFERENCES families(id) ON DELETE CASCADE,
		CONSTRAINT chk_records_amount CHECK (rice_received_kg >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS grievances (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		tracking_id    CHAR(12)        NOT NULL,
		subject        VARCHAR(255)    NOT NULL,
		content        TEXT            NOT NULL,
		contact_info   VARCHAR(255)    NULL,
		image_filename VARCHAR(255)    NULL,
		status         VARCHAR(255)    NOT NULL DEFAULT 'New',
		created_at     DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_grievances_tracking (tracking_id),
		KEY idx_grievances_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS grievance_comments (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		grievance_id BIGINT UNSIGNED NOT NULL,
		content      TEXT            NOT NULL,
		created_at   DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_comments_grievance (grievance_id, created_at),
		CONSTRAINT fk_comments_grievance FOREIGN KEY (grievance_id) REFERENCES grievances(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS admin_users (
		id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username           VARCHAR(100)    NOT NULL,
		password_hash      VARCHAR(255)    NOT NULL,
		reset_token        VARCHAR(64)     NULL,
		reset_token_expiry DATETIME        NULL,
		created_at         DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_admin_username (username),
		UNIQUE KEY uq_admin_reset_token (reset_token),
		CONSTRAINT chk_admin_reset_pair CHECK ((reset_token IS NULL) = (reset_token_expiry IS NULL))
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS announcements (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title      VARCHAR(255)    NOT NULL,
		content    TEXT            NOT NULL,
		created_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_announcements_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}
