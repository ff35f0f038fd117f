package vcardtool

// SaveOption configures how ConvertFile and MergeFile write their output.
//
// Example:
//
//	stats, err := conv.ConvertFile("contacts.vcf", "contacts3.vcf",
//	    vcardtool.WithBackup(".bak"),
//	    vcardtool.WithValidation(),
//	)
type SaveOption func(*saveOptions)

// saveOptions holds configuration for writing files.
type saveOptions struct {
	backupSuffix    string // Suffix for backup file (e.g., ".bak")
	validate        bool   // Re-read after write to verify
	preserveModTime bool   // Copy the input's modification time
}

// defaultSaveOptions returns the default configuration for saving.
func defaultSaveOptions() *saveOptions {
	return &saveOptions{}
}

func buildSaveOptions(opts []SaveOption) *saveOptions {
	o := defaultSaveOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBackup keeps an existing output file under a new name.
//
// The backup file has the suffix appended to the output filename. For
// example, WithBackup(".bak") renames an existing "contacts.vcf.converted"
// to "contacts.vcf.converted.bak" right before the new file takes its place.
//
// If the backup file already exists, it will be overwritten.
func WithBackup(suffix string) SaveOption {
	return func(o *saveOptions) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-reads the output after writing and checks that every
// record is balanced and carries an FN property.
//
// Use this when the output feeds another tool that cannot cope with
// malformed records.
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}

// WithPreserveModTime gives the output the modification time of the input.
func WithPreserveModTime() SaveOption {
	return func(o *saveOptions) {
		o.preserveModTime = true
	}
}
