// Package naming holds the file-name rules shared by the normalizers and the
// exporters: splitting a Media Pool file name into base and extension,
// deriving CMX 3600 reel names and keeping output artifacts from clobbering
// each other or the inputs.
package naming
