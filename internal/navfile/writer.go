package navfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"holefinder/internal/nav"
)

// Version is the AdocVersion written to new files.
const Version = "2.00"

// WriteHeader writes the file-level version line followed by a blank line.
func WriteHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s = %s\n\n", versionKey, Version)
	return err
}

// WritePoints writes each point as an item block terminated by a blank line.
func WritePoints(w io.Writer, points []nav.NavPoint) error {
	bw := bufio.NewWriter(w)
	for _, p := range points {
		if _, err := bw.WriteString(FormatPoint(p)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatPoint renders one item block.
func FormatPoint(p nav.NavPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s = %d]\n", itemKind, p.Label)
	fmt.Fprintf(&b, "Color = %d\n", p.Color)
	fmt.Fprintf(&b, "NumPts = %d\n", p.NumPts)
	fmt.Fprintf(&b, "Regis = %d\n", p.Regis)
	fmt.Fprintf(&b, "Type = %d\n", p.Type)
	fmt.Fprintf(&b, "PtsX = %s\n", formatFloat(p.PtsX))
	fmt.Fprintf(&b, "PtsY = %s\n", formatFloat(p.PtsY))
	fmt.Fprintf(&b, "DrawnID = %d\n", p.DrawnID)
	fmt.Fprintf(&b, "CoordsInMap = %s %s %s\n",
		formatFloat(p.CoordsInMap[0]), formatFloat(p.CoordsInMap[1]), formatFloat(p.CoordsInMap[2]))
	if p.GroupID != 0 {
		fmt.Fprintf(&b, "GroupID = %d\n", p.GroupID)
	}
	b.WriteString("\n")
	return b.String()
}

// Create writes a new navigation file containing points, replacing any
// existing file at path.
func Create(path string, points []nav.NavPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create nav file: %w", err)
	}
	if err := WriteHeader(f); err != nil {
		f.Close()
		return err
	}
	if err := WritePoints(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Append adds points to the end of an existing navigation file.
func Append(path string, points []nav.NavPoint) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("failed to open nav file for append: %w", err)
	}
	if err := WritePoints(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
