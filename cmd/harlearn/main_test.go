package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCommand executes the harlearn command tree with the given arguments and
// returns the combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append(args, "--log-level", "warn"))
	err := root.Execute()
	return buf.String(), err
}

// harCSVString builds a small but HAR-shaped CSV: a subject column, 561
// feature columns and all six activity labels, eight rows per class in well
// separated clusters.
func harCSVString() string {
	activities := []string{
		"WALKING", "WALKING_UPSTAIRS", "WALKING_DOWNSTAIRS",
		"SITTING", "STANDING", "LAYING",
	}
	offsets := []float64{-0.2, -0.15, -0.1, -0.05, 0.05, 0.1, 0.15, 0.2}

	var b strings.Builder
	b.WriteString("subject")
	for j := 1; j <= 561; j++ {
		fmt.Fprintf(&b, ",f%d", j)
	}
	b.WriteString(",Activity\n")

	subject := 1
	for class, activity := range activities {
		center := float64(class * 5)
		for _, off := range offsets {
			fmt.Fprintf(&b, "%d", subject)
			subject++
			for j := 0; j < 561; j++ {
				fmt.Fprintf(&b, ",%.4f", center+off+float64(j)*0.001)
			}
			b.WriteString("," + activity + "\n")
		}
	}
	return b.String()
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}
