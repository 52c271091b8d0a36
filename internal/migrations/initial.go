package migrations

import (
	"database/sql"
)

var initialTables = []string{
	`CREATE TABLE projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL UNIQUE,
		project_id INTEGER,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	)`,
	`CREATE TABLE switches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		config TEXT NOT NULL
	)`,
	`CREATE TABLE ports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		switch_id INTEGER NOT NULL,
		label TEXT NOT NULL,
		UNIQUE (switch_id, label),
		FOREIGN KEY (switch_id) REFERENCES switches(id)
	)`,
	`CREATE TABLE nics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		node_id INTEGER NOT NULL,
		label TEXT NOT NULL,
		macaddr TEXT NOT NULL DEFAULT '',
		port_id INTEGER UNIQUE,
		UNIQUE (node_id, label),
		FOREIGN KEY (node_id) REFERENCES nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (port_id) REFERENCES ports(id)
	)`,
	`CREATE TABLE networks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL UNIQUE,
		creator_id INTEGER,
		access_id INTEGER,
		allocated INTEGER NOT NULL DEFAULT 0,
		network_id TEXT NOT NULL UNIQUE,
		FOREIGN KEY (creator_id) REFERENCES projects(id),
		FOREIGN KEY (access_id) REFERENCES projects(id)
	)`,
	`CREATE TABLE network_attachments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nic_id INTEGER NOT NULL UNIQUE,
		network_id INTEGER NOT NULL,
		channel TEXT NOT NULL,
		FOREIGN KEY (nic_id) REFERENCES nics(id),
		FOREIGN KEY (network_id) REFERENCES networks(id)
	)`,
	`CREATE TABLE networking_actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nic_id INTEGER NOT NULL UNIQUE,
		new_network_id INTEGER,
		FOREIGN KEY (nic_id) REFERENCES nics(id) ON DELETE CASCADE,
		FOREIGN KEY (new_network_id) REFERENCES networks(id)
	)`,
	`CREATE TABLE headnodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL UNIQUE,
		project_id INTEGER NOT NULL,
		base_img TEXT NOT NULL DEFAULT '',
		dirty INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (project_id) REFERENCES projects(id)
	)`,
	`CREATE TABLE hnics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		headnode_id INTEGER NOT NULL,
		label TEXT NOT NULL,
		network_id INTEGER,
		UNIQUE (headnode_id, label),
		FOREIGN KEY (headnode_id) REFERENCES headnodes(id) ON DELETE CASCADE,
		FOREIGN KEY (network_id) REFERENCES networks(id)
	)`,
	`CREATE TABLE vlans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vlan_no INTEGER NOT NULL UNIQUE,
		available INTEGER NOT NULL DEFAULT 1
	)`,
}

// GetInitialMigrations returns all initial migrations
func GetInitialMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_initial_tables",
			Up: func(tx *sql.Tx) error {
				for _, stmt := range initialTables {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
			Down: func(tx *sql.Tx) error {
				// Drop tables in reverse order due to foreign key constraints
				for _, table := range []string{
					"vlans", "hnics", "headnodes", "networking_actions", "network_attachments",
					"networks", "nics", "ports", "switches", "nodes", "projects",
				} {
					if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
