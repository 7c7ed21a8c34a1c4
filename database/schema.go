package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the necessary database tables if they don't exist
func InitSchema(db *sql.DB) error {
	log.Info("Initializing accessmap database schema...")

	tables := []struct {
		name string
		sql  string
	}{
		{"orgs", `
	CREATE TABLE IF NOT EXISTS orgs(
		id VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	)`},
		{"users", `
	CREATE TABLE IF NOT EXISTS users(
		id VARCHAR(255) NOT NULL,
		is_blocked BOOL NOT NULL DEFAULT false,
		blocked_reason VARCHAR(512),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	)`},
		{"reports", `
	CREATE TABLE IF NOT EXISTS reports(
		id CHAR(36) NOT NULL,
		category ENUM('ramp', 'elevator', 'restroom', 'parking', 'entrance', 'pathway', 'other') NOT NULL,
		description TEXT,
		media_url VARCHAR(2048),
		place_name VARCHAR(255),
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		submitted_by VARCHAR(255) NOT NULL,
		submitted_by_org BOOL NOT NULL DEFAULT false,
		display_name VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		INDEX submitted_by_index (submitted_by),
		INDEX place_name_index (place_name)
	)`},
		{"report_verifications", `
	CREATE TABLE IF NOT EXISTS report_verifications(
		report_id CHAR(36) NOT NULL,
		org_id VARCHAR(255) NOT NULL,
		verified_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY report_org (report_id, org_id),
		INDEX org_id_index (org_id)
	)`},
		{"report_spam_marks", `
	CREATE TABLE IF NOT EXISTS report_spam_marks(
		report_id CHAR(36) NOT NULL,
		org_id VARCHAR(255) NOT NULL,
		reason VARCHAR(512),
		marked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY report_org (report_id, org_id),
		INDEX org_id_index (org_id)
	)`},
		{"user_spam_marks", `
	CREATE TABLE IF NOT EXISTS user_spam_marks(
		user_id VARCHAR(255) NOT NULL,
		org_id VARCHAR(255) NOT NULL,
		reason VARCHAR(512),
		marked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY user_org (user_id, org_id)
	)`},
		{"report_trust", `
	CREATE TABLE IF NOT EXISTS report_trust(
		report_id CHAR(36) NOT NULL,
		user_id VARCHAR(255) NOT NULL,
		UNIQUE KEY report_user (report_id, user_id)
	)`},
		{"report_comments", `
	CREATE TABLE IF NOT EXISTS report_comments(
		id CHAR(36) NOT NULL,
		report_id CHAR(36) NOT NULL,
		author_id VARCHAR(255) NOT NULL,
		author VARCHAR(255),
		text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		INDEX report_id_index (report_id)
	)`},
		{"comment_likes", `
	CREATE TABLE IF NOT EXISTS comment_likes(
		comment_id CHAR(36) NOT NULL,
		user_id VARCHAR(255) NOT NULL,
		UNIQUE KEY comment_user (comment_id, user_id)
	)`},
		{"official_responses", `
	CREATE TABLE IF NOT EXISTS official_responses(
		report_id CHAR(36) NOT NULL,
		org_id VARCHAR(255) NOT NULL,
		org_name VARCHAR(255),
		text TEXT NOT NULL,
		responded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (report_id)
	)`},
		{"zones", `
	CREATE TABLE IF NOT EXISTS zones(
		id INT NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		owner_org_id VARCHAR(255) NOT NULL,
		ring_json JSON NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY name_unique (name),
		INDEX owner_org_index (owner_org_id)
	)`},
		{"zone_index", `
	CREATE TABLE IF NOT EXISTS zone_index(
		zone_id INT NOT NULL,
		geom GEOMETRY NOT NULL SRID 4326,
		SPATIAL INDEX(geom)
	)`},
		{"moderation_events", `
	CREATE TABLE IF NOT EXISTS moderation_events(
		seq INT NOT NULL AUTO_INCREMENT,
		actor VARCHAR(255),
		action VARCHAR(64) NOT NULL,
		target_type VARCHAR(32) NOT NULL,
		target_id VARCHAR(255) NOT NULL,
		details JSON,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (seq)
	)`},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.sql); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
		log.Infof("%s table created/verified", table.name)
	}

	log.Info("Accessmap database schema initialization completed")
	return nil
}
