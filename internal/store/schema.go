package store

// schema creates the ten logical tables spec section 4.7 names. The
// teacher's LocalStore (internal/store/local_core.go) builds its schema as
// a list of multi-statement strings executed in sequence with
// CREATE TABLE/INDEX IF NOT EXISTS, so the same shape is reused here.
const schema = `
CREATE TABLE IF NOT EXISTS commands (
	command TEXT PRIMARY KEY,
	total_usage_count INTEGER NOT NULL DEFAULT 0,
	first_seen DATETIME NOT NULL,
	last_used DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS arguments (
	command TEXT NOT NULL,
	argument TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0,
	first_seen DATETIME NOT NULL,
	last_used DATETIME NOT NULL,
	is_flag BOOLEAN NOT NULL DEFAULT 0,
	PRIMARY KEY (command, argument)
);
CREATE INDEX IF NOT EXISTS idx_arguments_command ON arguments(command);

CREATE TABLE IF NOT EXISTS flag_combinations (
	command TEXT NOT NULL,
	flags_key TEXT NOT NULL,
	flags TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0,
	first_seen DATETIME NOT NULL,
	last_used DATETIME NOT NULL,
	PRIMARY KEY (command, flags_key)
);

CREATE TABLE IF NOT EXISTS argument_sequences (
	command TEXT NOT NULL,
	first_argument TEXT NOT NULL,
	second_argument TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0,
	first_seen DATETIME NOT NULL,
	last_used DATETIME NOT NULL,
	PRIMARY KEY (command, first_argument, second_argument)
);
CREATE INDEX IF NOT EXISTS idx_argseq_command_first ON argument_sequences(command, first_argument);

CREATE TABLE IF NOT EXISTS parameters (
	command TEXT NOT NULL,
	parameter TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0,
	first_seen DATETIME NOT NULL,
	last_used DATETIME NOT NULL,
	PRIMARY KEY (command, parameter)
);

CREATE TABLE IF NOT EXISTS parameter_values (
	command TEXT NOT NULL,
	parameter TEXT NOT NULL,
	value TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0,
	first_seen DATETIME NOT NULL,
	last_used DATETIME NOT NULL,
	PRIMARY KEY (command, parameter, value)
);

CREATE TABLE IF NOT EXISTS command_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid TEXT NOT NULL UNIQUE,
	command TEXT NOT NULL,
	command_line TEXT NOT NULL,
	arguments_json TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	success BOOLEAN NOT NULL DEFAULT 1,
	working_directory TEXT
);
CREATE INDEX IF NOT EXISTS idx_command_history_timestamp ON command_history(timestamp);

CREATE TABLE IF NOT EXISTS command_sequences (
	prev_command TEXT NOT NULL,
	next_command TEXT NOT NULL,
	frequency INTEGER NOT NULL DEFAULT 0,
	last_seen DATETIME NOT NULL,
	PRIMARY KEY (prev_command, next_command)
);

CREATE TABLE IF NOT EXISTS workflow_transitions (
	from_command TEXT NOT NULL,
	to_command TEXT NOT NULL,
	frequency INTEGER NOT NULL DEFAULT 0,
	total_time_delta_ms INTEGER NOT NULL DEFAULT 0,
	first_seen DATETIME NOT NULL,
	last_used DATETIME NOT NULL,
	PRIMARY KEY (from_command, to_command)
);

CREATE TABLE IF NOT EXISTS co_occurrences (
	command TEXT NOT NULL,
	arg_a TEXT NOT NULL,
	arg_b TEXT NOT NULL,
	usage_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (command, arg_a, arg_b)
);
`
