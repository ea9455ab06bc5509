package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: PROPOSITIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- One sequence serves every admission context.
CREATE SEQUENCE IF NOT EXISTS proposition_reference_seq START WITH 300000 MINVALUE 300000;

CREATE TABLE IF NOT EXISTS doctoral_propositions (
    id UUID PRIMARY KEY,
    candidate_id VARCHAR(50) NOT NULL,
    status VARCHAR(40) NOT NULL,
    reference BIGINT UNIQUE,
    data JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    modified_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_doctoral_propositions_candidate ON doctoral_propositions(candidate_id, created_at);

CREATE TABLE IF NOT EXISTS general_propositions (
    id UUID PRIMARY KEY,
    kind VARCHAR(40) NOT NULL,
    candidate_id VARCHAR(50) NOT NULL,
    status VARCHAR(40) NOT NULL,
    reference BIGINT UNIQUE,
    data JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL,
    modified_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_general_propositions_candidate ON general_propositions(candidate_id, created_at);

CREATE TABLE IF NOT EXISTS supervision_groups (
    proposition_id UUID PRIMARY KEY,
    data JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS group_signatories (
    proposition_id UUID NOT NULL REFERENCES supervision_groups(proposition_id) ON DELETE CASCADE,
    person_id VARCHAR(50) NOT NULL,
    PRIMARY KEY (proposition_id, person_id)
);

CREATE INDEX IF NOT EXISTS idx_group_signatories_person ON group_signatories(person_id);

CREATE TABLE IF NOT EXISTS document_slots (
    proposition_id UUID NOT NULL,
    identifier VARCHAR(255) NOT NULL,
    seq BIGSERIAL,
    data JSONB NOT NULL,
    PRIMARY KEY (proposition_id, identifier)
);

CREATE TABLE IF NOT EXISTS proposition_history (
    id BIGSERIAL PRIMARY KEY,
    proposition_id UUID NOT NULL,
    author VARCHAR(100) NOT NULL,
    message_fr TEXT NOT NULL,
    message_en TEXT NOT NULL,
    tags TEXT[] NOT NULL DEFAULT '{}',
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_proposition_history_proposition ON proposition_history(proposition_id, id);
`

const migration001Down = `
DROP TABLE IF EXISTS proposition_history;
DROP TABLE IF EXISTS document_slots;
DROP TABLE IF EXISTS group_signatories;
DROP TABLE IF EXISTS supervision_groups;
DROP TABLE IF EXISTS general_propositions;
DROP TABLE IF EXISTS doctoral_propositions;
DROP SEQUENCE IF EXISTS proposition_reference_seq;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: DOCTORAL FOLLOW-UP
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS confirmation_exams (
    id UUID PRIMARY KEY,
    doctorate_id UUID NOT NULL,
    seq BIGSERIAL,
    data JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_confirmation_exams_doctorate ON confirmation_exams(doctorate_id, seq DESC);

CREATE TABLE IF NOT EXISTS training_activities (
    id UUID PRIMARY KEY,
    doctorate_id UUID NOT NULL,
    parent_id UUID,
    seq BIGSERIAL,
    data JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_training_activities_doctorate ON training_activities(doctorate_id, seq);
CREATE INDEX IF NOT EXISTS idx_training_activities_parent ON training_activities(parent_id);

CREATE TABLE IF NOT EXISTS juries (
    id UUID PRIMARY KEY,
    data JSONB NOT NULL
);
`

const migration002Down = `
DROP TABLE IF EXISTS juries;
DROP TABLE IF EXISTS training_activities;
DROP TABLE IF EXISTS confirmation_exams;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: OVERDUE DOCUMENT REQUESTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE INDEX IF NOT EXISTS idx_document_slots_requested
    ON document_slots ((data->>'DueAt'))
    WHERE data->>'Status' = 'RECLAME';
`

const migration003Down = `
DROP INDEX IF EXISTS idx_document_slots_requested;
`
