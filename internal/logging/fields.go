package logging

// Field names for structured logging.
const (
	FieldError  = "error"
	FieldInput  = "input"
	FieldInputs = "inputs"
	FieldOutput = "output"

	// Conversion fields.
	FieldStructure   = "read_structure"
	FieldStructures  = "read_structures"
	FieldSample      = "sample"
	FieldLibrary     = "library"
	FieldReadGroup   = "read_group"
	FieldWorkers     = "workers"
	FieldBatchSize   = "batch_size"
	FieldCompression = "compression_level"

	// Statistics fields.
	FieldRecordsIn  = "records_in"
	FieldRecordsOut = "records_out"
	FieldElapsed    = "elapsed"
	FieldRate       = "records_per_sec"

	// Version fields.
	FieldVersion = "version"
)
