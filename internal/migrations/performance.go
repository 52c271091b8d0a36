package migrations

import (
	"database/sql"
)

// GetPerformanceMigrations returns performance optimization migrations
func GetPerformanceMigrations() []Migration {
	return []Migration{
		{
			Version: 2,
			Name:    "add_performance_indices",
			Up: func(tx *sql.Tx) error {
				// Add indices for the lookups done on every mutation
				indices := []string{
					"CREATE INDEX IF NOT EXISTS idx_nodes_project_id ON nodes(project_id)",
					"CREATE INDEX IF NOT EXISTS idx_ports_switch_id ON ports(switch_id)",
					"CREATE INDEX IF NOT EXISTS idx_network_attachments_network_id ON network_attachments(network_id)",
					"CREATE INDEX IF NOT EXISTS idx_networking_actions_new_network_id ON networking_actions(new_network_id)",
					"CREATE INDEX IF NOT EXISTS idx_hnics_network_id ON hnics(network_id)",
					"CREATE INDEX IF NOT EXISTS idx_headnodes_project_id ON headnodes(project_id)",
					"CREATE INDEX IF NOT EXISTS idx_vlans_available ON vlans(available, vlan_no)",
				}

				for _, indexSQL := range indices {
					if _, err := tx.Exec(indexSQL); err != nil {
						return err
					}
				}

				return nil
			},
			Down: func(tx *sql.Tx) error {
				indices := []string{
					"DROP INDEX IF EXISTS idx_nodes_project_id",
					"DROP INDEX IF EXISTS idx_ports_switch_id",
					"DROP INDEX IF EXISTS idx_network_attachments_network_id",
					"DROP INDEX IF EXISTS idx_networking_actions_new_network_id",
					"DROP INDEX IF EXISTS idx_hnics_network_id",
					"DROP INDEX IF EXISTS idx_headnodes_project_id",
					"DROP INDEX IF EXISTS idx_vlans_available",
				}

				for _, dropSQL := range indices {
					if _, err := tx.Exec(dropSQL); err != nil {
						return err
					}
				}

				return nil
			},
		},
	}
}
