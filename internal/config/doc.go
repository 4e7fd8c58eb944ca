// The config package encapsulates configuration for the lockstep
// viewer.
//
// The viewer stores its log and any runtime information within a
// dedicated base directory. When loading the configuration, the first
// and only argument is the path to the base directory rather than the
// path to the configuration file. The designated directory may
// contain a file called 'config' of key-value lines corresponding to
// the C struct of this package; a missing file yields the defaults.
// The log file path is derived from the base directory and exposed as
// a method of C.
package config
