// Package naming builds output file paths and keeps them unique within a
// batch.
//
// The convention is <outputDir>/<input stem>_<preset>.<ext>, e.g.
// "holiday.mov" with the WEBM preset becomes "holiday_webm.webm". The path
// depends only on the input name, directory, and preset, so re-running a
// batch overwrites rather than duplicates. Two different inputs in the same
// batch that share a stem get a " - dupN" suffix on the later one.
package naming
