// Package export renders scan results as JSON, CSV, or plain text reports.
//
// The JSON form is machine-oriented and mirrors the scan result verbatim.
// The CSV form is one row per file, flagged original or duplicate. The text
// form is a human-readable report grouped by digest. Within every group the
// first path is reported as the original and the rest as duplicates.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rendayigit/dupescan/internal/types"
)

type jsonScanInfo struct {
	Directory       string  `json:"directory"`
	Timestamp       string  `json:"timestamp"`
	ScanTime        float64 `json:"scan_time"`
	TotalGroups     int     `json:"total_groups"`
	TotalDuplicates int     `json:"total_duplicates"`
	WastedSpace     int64   `json:"wasted_space"`
}

type jsonReport struct {
	ScanInfo        jsonScanInfo        `json:"scan_info"`
	DuplicateGroups map[string][]string `json:"duplicate_groups"`
}

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, result *types.ScanResult) error {
	report := jsonReport{
		ScanInfo: jsonScanInfo{
			Directory:       result.Directory,
			Timestamp:       result.Timestamp,
			ScanTime:        result.ScanTime,
			TotalGroups:     result.TotalGroups,
			TotalDuplicates: result.TotalDuplicates,
			WastedSpace:     result.WastedSpace,
		},
		DuplicateGroups: make(map[string][]string, len(result.Groups)),
	}
	for _, g := range result.Groups {
		report.DuplicateGroups[g.Digest] = g.Paths
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// WriteCSV writes one row per file: group number, digest, path, size, and
// a duplicate flag that is false only for the first path of each group.
func WriteCSV(w io.Writer, result *types.ScanResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Group", "Hash", "File Path", "File Size", "Is Duplicate"}); err != nil {
		return err
	}
	for i, g := range result.Groups {
		for j, path := range g.Paths {
			row := []string{
				strconv.Itoa(i + 1),
				g.Digest,
				path,
				strconv.FormatInt(g.Size, 10),
				strconv.FormatBool(j > 0),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes a human-readable report.
func WriteText(w io.Writer, result *types.ScanResult) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Duplicate File Analysis Report")
	fmt.Fprintln(bw, strings.Repeat("=", 50))
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Directory: %s\n", result.Directory)
	fmt.Fprintf(bw, "Scan Date: %s\n", result.Timestamp)
	fmt.Fprintf(bw, "Scan Time: %.2f seconds\n", result.ScanTime)
	fmt.Fprintf(bw, "Duplicate Groups: %d\n", result.TotalGroups)
	fmt.Fprintf(bw, "Duplicate Files: %d\n", result.TotalDuplicates)
	fmt.Fprintf(bw, "Wasted Space: %s\n\n", humanize.IBytes(uint64(result.WastedSpace)))

	for i, g := range result.Groups {
		wasted := g.Size * int64(len(g.Paths)-1)
		fmt.Fprintf(bw, "Group %d: %d files\n", i+1, len(g.Paths))
		fmt.Fprintf(bw, "Size: %s each\n", humanize.IBytes(uint64(g.Size)))
		fmt.Fprintf(bw, "Wasted: %s\n", humanize.IBytes(uint64(wasted)))
		fmt.Fprintf(bw, "Hash: %s\n", g.Digest)
		for j, path := range g.Paths {
			marker := "ORIGINAL"
			if j > 0 {
				marker = "DUPLICATE"
			}
			fmt.Fprintf(bw, "  %s: %s\n", marker, path)
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// WriteFile writes the result to path, choosing the format from the file
// extension: .json and .csv select their formats, anything else gets text.
func WriteFile(path string, result *types.ScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = WriteJSON(f, result)
	case ".csv":
		err = WriteCSV(f, result)
	default:
		err = WriteText(f, result)
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
