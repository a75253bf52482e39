package database

import (
	"context"
	"database/sql"
)

// schemaStatements contains the full DDL for the service, one statement per
// entry because the MySQL driver does not execute multi-statement strings by
// default.  Ownership cascades follow the domain: deleting a conference
// removes its enrollments, their timeslots and the signups on them.  The
// CHECK on timeslots is defense in depth for the occupancy invariant
// (0 <= current_count <= max_capacity); the application's single write path
// is what actually maintains it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role ENUM('ADMIN','VOLUNTEER') NOT NULL DEFAULT 'VOLUNTEER',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS conferences (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		hours_start VARCHAR(5) NULL,
		hours_end VARCHAR(5) NULL,
		timezone VARCHAR(64) NOT NULL DEFAULT 'UTC',
		archived TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT chk_conferences_dates CHECK (end_date >= start_date)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS programs (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		max_volunteers INT UNSIGNED NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_programs_name (name),
		CONSTRAINT chk_programs_capacity CHECK (max_volunteers > 0)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS enrollments (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		conference_id BIGINT UNSIGNED NOT NULL,
		program_id BIGINT UNSIGNED NOT NULL,
		day_schedule JSON NULL,
		max_volunteers INT UNSIGNED NULL,
		public_description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_enrollments_pair (conference_id, program_id),
		KEY idx_enrollments_program (program_id),
		CONSTRAINT fk_enrollments_conference FOREIGN KEY (conference_id) REFERENCES conferences(id) ON DELETE CASCADE,
		CONSTRAINT fk_enrollments_program FOREIGN KEY (program_id) REFERENCES programs(id) ON DELETE CASCADE,
		CONSTRAINT chk_enrollments_capacity CHECK (max_volunteers IS NULL OR max_volunteers > 0)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS timeslots (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		enrollment_id BIGINT UNSIGNED NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		max_capacity INT UNSIGNED NOT NULL,
		current_count INT UNSIGNED NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_timeslots_start (enrollment_id, start_time),
		KEY idx_timeslots_start_time (start_time),
		CONSTRAINT fk_timeslots_enrollment FOREIGN KEY (enrollment_id) REFERENCES enrollments(id) ON DELETE CASCADE,
		CONSTRAINT chk_timeslots_capacity CHECK (max_capacity > 0),
		CONSTRAINT chk_timeslots_count CHECK (current_count >= 0 AND current_count <= max_capacity)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS signups (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		timeslot_id BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_signups_user_timeslot (user_id, timeslot_id),
		KEY idx_signups_timeslot (timeslot_id),
		CONSTRAINT fk_signups_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_signups_timeslot FOREIGN KEY (timeslot_id) REFERENCES timeslots(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS qualifications (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_qualifications_name (name)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS program_qualifications (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		program_id BIGINT UNSIGNED NOT NULL,
		qualification_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_program_qualifications (program_id, qualification_id),
		CONSTRAINT fk_pq_program FOREIGN KEY (program_id) REFERENCES programs(id) ON DELETE CASCADE,
		CONSTRAINT fk_pq_qualification FOREIGN KEY (qualification_id) REFERENCES qualifications(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS user_qualifications (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		qualification_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_user_qualifications (user_id, qualification_id),
		CONSTRAINT fk_uq_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_uq_qualification FOREIGN KEY (qualification_id) REFERENCES qualifications(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
}

// EnsureSchema creates all tables if they do not already exist.  It is safe
// to call on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
