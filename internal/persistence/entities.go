package persistence

import (
	"errors"
	"strings"

	"github.com/Raj-Randive/soar-school-management-system/internal/loader"
)

// Entity describes one stored record kind and the DDL that creates its table.
type Entity struct {
	Table     string
	DependsOn []string
	Schema    string
}

func (e Entity) validate() (Entity, error) {
	if e.Table == "" || strings.TrimSpace(e.Schema) == "" {
		return Entity{}, errors.New("entity needs a table and a schema")
	}
	return e, nil
}

// Entities is the registry scanned by the "entities/*.entity" pass.
func Entities() loader.Source[Entity] {
	return loader.Source[Entity]{
		{Path: "entities/school.entity", Build: Entity{
			Table: "schools",
			Schema: `
CREATE TABLE IF NOT EXISTS schools (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    address     TEXT NOT NULL,
    phone       TEXT NOT NULL,
    admin_ids   TEXT[] NOT NULL DEFAULT '{}',
    capacity    INTEGER NOT NULL CHECK (capacity >= 0),
    resources   TEXT[] NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
		}.validate},
		{Path: "entities/user.entity", Build: Entity{
			Table:     "users",
			DependsOn: []string{"schools"},
			Schema: `
CREATE TABLE IF NOT EXISTS users (
    id             UUID PRIMARY KEY,
    name           TEXT NOT NULL,
    email          TEXT NOT NULL UNIQUE,
    password_hash  TEXT NOT NULL,
    role           TEXT NOT NULL CHECK (role IN ('superadmin', 'schooladmin')),
    school_id      UUID REFERENCES schools(id) ON DELETE SET NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
		}.validate},
		{Path: "entities/classroom.entity", Build: Entity{
			Table:     "classrooms",
			DependsOn: []string{"schools"},
			Schema: `
CREATE TABLE IF NOT EXISTS classrooms (
    id          UUID PRIMARY KEY,
    school_id   UUID NOT NULL REFERENCES schools(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    capacity    INTEGER NOT NULL CHECK (capacity >= 0),
    resources   TEXT[] NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (school_id, name)
);`,
		}.validate},
		{Path: "entities/student.entity", Build: Entity{
			Table:     "students",
			DependsOn: []string{"schools", "classrooms"},
			Schema: `
CREATE TABLE IF NOT EXISTS students (
    id               UUID PRIMARY KEY,
    school_id        UUID NOT NULL REFERENCES schools(id) ON DELETE CASCADE,
    classroom_id     UUID REFERENCES classrooms(id) ON DELETE SET NULL,
    name             TEXT NOT NULL,
    email            TEXT UNIQUE,
    phone            TEXT,
    enrollment_date  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'transferred', 'inactive')),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS students_school_id_idx ON students (school_id);`,
		}.validate},
	}
}
