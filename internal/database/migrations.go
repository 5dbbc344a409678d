package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Migration 1: Table des sessions de combat
const createCombatSessionsTable = `
CREATE TABLE IF NOT EXISTS combat_sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'preparing' CHECK (status IN ('preparing', 'active', 'paused', 'completed')),
    current_round INTEGER NOT NULL DEFAULT 0,
    current_turn INTEGER NOT NULL DEFAULT 0,
    victory_points INTEGER NOT NULL DEFAULT 0,
    hero_points INTEGER NOT NULL DEFAULT 0,

    -- Collections imbriquées
    combatants JSONB NOT NULL DEFAULT '[]',
    groups JSONB NOT NULL DEFAULT '{}',
    log JSONB NOT NULL DEFAULT '[]',

    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 2: Table des sessions de montage
const createMontageSessionsTable = `
CREATE TABLE IF NOT EXISTS montage_sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed')),
    outcome VARCHAR(20) NOT NULL DEFAULT '' CHECK (outcome IN ('', 'total_success', 'partial_success', 'failure')),
    current_round INTEGER NOT NULL DEFAULT 1,
    max_rounds INTEGER NOT NULL DEFAULT 2,
    successes INTEGER NOT NULL DEFAULT 0,
    failures INTEGER NOT NULL DEFAULT 0,
    success_limit INTEGER NOT NULL,
    failure_limit INTEGER NOT NULL,

    log JSONB NOT NULL DEFAULT '[]',

    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 3: Table des entités de campagne
const createEntitiesTable = `
CREATE TABLE IF NOT EXISTS entities (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    campaign_id UUID NOT NULL,
    kind VARCHAR(20) NOT NULL CHECK (kind IN ('character', 'npc', 'location', 'scene', 'item', 'faction')),
    name VARCHAR(255) NOT NULL,

    -- Champs libres selon le type d'entité
    fields JSONB NOT NULL DEFAULT '{}',

    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 4: Table de l'historique de conversation
const createChatMessagesTable = `
CREATE TABLE IF NOT EXISTS chat_messages (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    role VARCHAR(20) NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content TEXT NOT NULL,
    model VARCHAR(100) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 5: Table des réglages
const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
    key VARCHAR(100) PRIMARY KEY,
    value TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);`

// Migration 6: Index pour les performances
const createIndexes = `
-- Index pour combat_sessions
CREATE INDEX IF NOT EXISTS idx_combat_sessions_status ON combat_sessions(status);
CREATE INDEX IF NOT EXISTS idx_combat_sessions_created_at ON combat_sessions(created_at);

-- Index pour montage_sessions
CREATE INDEX IF NOT EXISTS idx_montage_sessions_status ON montage_sessions(status);
CREATE INDEX IF NOT EXISTS idx_montage_sessions_created_at ON montage_sessions(created_at);

-- Index pour entities
CREATE INDEX IF NOT EXISTS idx_entities_campaign_id ON entities(campaign_id);
CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(campaign_id, kind);
CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(campaign_id, name);

-- Index pour chat_messages
CREATE INDEX IF NOT EXISTS idx_chat_messages_created_at ON chat_messages(created_at);`

// RunMigrations exécute les migrations de base de données
func RunMigrations(db *DB) error {
	logrus.Info("Running database migrations...")

	migrations := []string{
		createCombatSessionsTable,
		createMontageSessionsTable,
		createEntitiesTable,
		createChatMessagesTable,
		createSettingsTable,
		createIndexes,
	}

	for i, migration := range migrations {
		logrus.WithField("migration", i+1).Debug("Executing migration")

		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
