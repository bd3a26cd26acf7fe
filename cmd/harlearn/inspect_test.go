package main

import (
	"strings"
	"testing"
)

func TestInspectCommand(t *testing.T) {
	csv := "subject,f1,f2,Activity\n" +
		"1,0.1,0.5,WALKING\n" +
		"1,0.2,NaN,SITTING\n" +
		"2,0.3,0.7,WALKING\n"
	dataPath := writeFixture(t, "small.csv", csv)

	out, err := runCommand(t, "inspect", "--data", dataPath)
	if err != nil {
		t.Fatalf("inspect failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"Dataset audit",
		"Missing cells by column",
		"Label distribution",
		"WALKING",
		"66.7%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCommandClean(t *testing.T) {
	csv := "subject,f1,Activity\n1,0.1,WALKING\n2,0.2,SITTING\n"
	dataPath := writeFixture(t, "clean.csv", csv)

	out, err := runCommand(t, "inspect", "--data", dataPath)
	if err != nil {
		t.Fatalf("inspect failed: %v\n%s", err, out)
	}
	if strings.Contains(out, "Missing cells by column") {
		t.Errorf("clean data should not render the missing cells table:\n%s", out)
	}
}

func TestInspectCommandCustomColumns(t *testing.T) {
	// No subject column; the default ignore list applies only to columns
	// that exist.
	csv := "f1,f2,label\n0.1,0.5,x\n0.2,0.6,y\n"
	dataPath := writeFixture(t, "custom.csv", csv)

	out, err := runCommand(t, "inspect", "--data", dataPath, "--label-column", "label")
	if err != nil {
		t.Fatalf("inspect failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dataset audit") {
		t.Errorf("output missing audit table:\n%s", out)
	}
}
