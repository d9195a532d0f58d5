package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: USERS AND CATALOG
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Accounts and role profiles
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email VARCHAR(254) NOT NULL UNIQUE,
    name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    password_hash TEXT NOT NULL,
    role VARCHAR(20) NOT NULL,
    birthdate DATE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_role CHECK (role IN ('ADMIN', 'SECRETARY', 'PROFESSOR', 'STUDENT'))
);

CREATE TABLE IF NOT EXISTS student_profiles (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    student_code CHAR(8) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS teacher_profiles (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    specialization VARCHAR(150) NOT NULL
);

-- Course catalog
CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY,
    code CHAR(8) NOT NULL UNIQUE,
    name VARCHAR(150) NOT NULL,
    credits INTEGER NOT NULL,
    type VARCHAR(20) NOT NULL,

    CONSTRAINT valid_credits CHECK (credits > 0),
    CONSTRAINT valid_course_type CHECK (type IN ('THEORY', 'LAB', 'THEORY_LAB'))
);

CREATE TABLE IF NOT EXISTS theory_groups (
    id UUID PRIMARY KEY,
    course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    professor_id UUID NOT NULL REFERENCES users(id),
    semester VARCHAR(10) NOT NULL,
    group_letter CHAR(1) NOT NULL,

    CONSTRAINT unique_theory_group UNIQUE (course_id, semester, group_letter)
);

CREATE INDEX IF NOT EXISTS idx_theory_groups_professor ON theory_groups(professor_id, semester);

CREATE TABLE IF NOT EXISTS lab_groups (
    id UUID PRIMARY KEY,
    course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    professor_id UUID NOT NULL REFERENCES users(id),
    group_letter CHAR(1) NOT NULL,
    capacity INTEGER NOT NULL,
    current_enrollment INTEGER NOT NULL DEFAULT 0,

    CONSTRAINT unique_lab_group UNIQUE (course_id, group_letter),
    CONSTRAINT valid_capacity CHECK (capacity BETWEEN 1 AND 50),
    CONSTRAINT valid_current_enrollment CHECK (current_enrollment >= 0 AND current_enrollment <= capacity)
);

CREATE INDEX IF NOT EXISTS idx_lab_groups_professor ON lab_groups(professor_id);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: ENROLLMENT AND GRADING
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS enrollments (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL REFERENCES student_profiles(id) ON DELETE CASCADE,
    theory_group_id UUID NOT NULL REFERENCES theory_groups(id) ON DELETE CASCADE,
    lab_group_id UUID REFERENCES lab_groups(id) ON DELETE SET NULL,

    CONSTRAINT unique_enrollment UNIQUE (student_id, theory_group_id)
);

CREATE INDEX IF NOT EXISTS idx_enrollments_theory_group ON enrollments(theory_group_id);
CREATE INDEX IF NOT EXISTS idx_enrollments_lab_group ON enrollments(lab_group_id) WHERE lab_group_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS grades (
    id UUID PRIMARY KEY,
    enrollment_id UUID NOT NULL REFERENCES enrollments(id) ON DELETE CASCADE,
    type VARCHAR(20) NOT NULL,
    score DOUBLE PRECISION NOT NULL,

    CONSTRAINT unique_grade UNIQUE (enrollment_id, type),
    CONSTRAINT valid_score CHECK (score >= 0 AND score <= 20)
);

CREATE TABLE IF NOT EXISTS grade_weights (
    id UUID PRIMARY KEY,
    theory_group_id UUID NOT NULL REFERENCES theory_groups(id) ON DELETE CASCADE,
    type VARCHAR(20) NOT NULL,
    weight DOUBLE PRECISION NOT NULL,

    CONSTRAINT unique_grade_weight UNIQUE (theory_group_id, type),
    CONSTRAINT valid_weight CHECK (weight >= 0 AND weight <= 100)
);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: SCHEDULING
// Times of day are stored as minutes since midnight.
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS classrooms (
    id UUID PRIMARY KEY,
    name VARCHAR(50) NOT NULL UNIQUE,
    capacity INTEGER NOT NULL,
    type VARCHAR(10) NOT NULL,

    CONSTRAINT valid_classroom_capacity CHECK (capacity BETWEEN 1 AND 100),
    CONSTRAINT valid_classroom_type CHECK (type IN ('THEORY', 'LAB'))
);

CREATE TABLE IF NOT EXISTS class_schedules (
    id UUID PRIMARY KEY,
    classroom_id UUID NOT NULL REFERENCES classrooms(id),
    day VARCHAR(10) NOT NULL,
    start_minutes SMALLINT NOT NULL,
    end_minutes SMALLINT NOT NULL,
    semester VARCHAR(10) NOT NULL,
    theory_group_id UUID REFERENCES theory_groups(id) ON DELETE CASCADE,
    lab_group_id UUID REFERENCES lab_groups(id) ON DELETE CASCADE,

    CONSTRAINT valid_schedule_range CHECK (start_minutes >= 0 AND start_minutes < end_minutes AND end_minutes <= 1440),
    CONSTRAINT single_schedule_owner CHECK ((theory_group_id IS NULL) <> (lab_group_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_class_schedules_classroom ON class_schedules(classroom_id, semester);
CREATE INDEX IF NOT EXISTS idx_class_schedules_theory ON class_schedules(theory_group_id) WHERE theory_group_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_class_schedules_lab ON class_schedules(lab_group_id) WHERE lab_group_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS room_reservations (
    id UUID PRIMARY KEY,
    classroom_id UUID NOT NULL REFERENCES classrooms(id),
    professor_id UUID NOT NULL REFERENCES users(id),
    semester VARCHAR(10) NOT NULL,
    date DATE NOT NULL,
    start_minutes SMALLINT NOT NULL,
    end_minutes SMALLINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'RESERVED',
    notes TEXT NOT NULL DEFAULT '',

    CONSTRAINT valid_reservation_range CHECK (start_minutes >= 0 AND start_minutes < end_minutes AND end_minutes <= 1440),
    CONSTRAINT valid_reservation_status CHECK (status IN ('FREE', 'RESERVED', 'COMPLETED'))
);

CREATE INDEX IF NOT EXISTS idx_room_reservations_classroom_date ON room_reservations(classroom_id, date) WHERE status = 'RESERVED';
CREATE INDEX IF NOT EXISTS idx_room_reservations_professor_date ON room_reservations(professor_id, date);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: TEACHING RECORDS AND SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
CREATE TABLE IF NOT EXISTS attendance (
    id UUID PRIMARY KEY,
    enrollment_id UUID NOT NULL REFERENCES enrollments(id) ON DELETE CASCADE,
    class_type VARCHAR(10) NOT NULL,
    date DATE NOT NULL,
    status VARCHAR(10) NOT NULL,

    CONSTRAINT unique_attendance UNIQUE (enrollment_id, class_type, date),
    CONSTRAINT valid_attendance_status CHECK (status IN ('PRESENT', 'ABSENT'))
);

CREATE TABLE IF NOT EXISTS course_contents (
    id UUID PRIMARY KEY,
    theory_group_id UUID NOT NULL REFERENCES theory_groups(id) ON DELETE CASCADE,
    week SMALLINT NOT NULL,
    topic_name VARCHAR(255) NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'PENDING',

    CONSTRAINT valid_week CHECK (week BETWEEN 1 AND 18),
    CONSTRAINT valid_topic_status CHECK (status IN ('PENDING', 'COMPLETED'))
);

CREATE INDEX IF NOT EXISTS idx_course_contents_group ON course_contents(theory_group_id, week);

-- group_id points at a theory group or a lab group
CREATE TABLE IF NOT EXISTS group_portfolios (
    id UUID PRIMARY KEY,
    group_id UUID NOT NULL UNIQUE,
    syllabus_url TEXT NOT NULL DEFAULT '',
    low_grade_evidence_url TEXT NOT NULL DEFAULT '',
    average_grade_evidence_url TEXT NOT NULL DEFAULT '',
    high_grade_evidence_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS system_config (
    key VARCHAR(100) PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`
