package main

import (
	"bufio"
	"os"

	"github.com/go-gota/gota/dataframe"

	"github.com/sigmotion/harlearn/dataset"
	"github.com/sigmotion/harlearn/pkg/errors"
)

// loadDataset parses a CSV into a labeled Dataset. The ignore list is
// applied leniently so files that ship without a subject column still load.
func loadDataset(path, labelColumn string, ignore []string, dropNA bool) (*dataset.Dataset, error) {
	df, err := readFrame(path)
	if err != nil {
		return nil, err
	}

	opts := []dataset.Option{dataset.WithLabelColumn(labelColumn)}
	if present := presentColumns(df.Names(), ignore); len(present) > 0 {
		opts = append(opts, dataset.WithIgnoreColumns(present...))
	}
	if dropNA {
		opts = append(opts, dataset.WithDropNA())
	}
	return dataset.New(df, opts...)
}

// readFrame parses a CSV file into a raw gota frame.
func readFrame(path string) (dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "opening %s", path)
	}
	defer file.Close()

	df := dataframe.ReadCSV(bufio.NewReader(file), dataframe.HasHeader(true))
	if df.Error() != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Error(), "parsing %s", path)
	}
	return df, nil
}

func presentColumns(names, candidates []string) []string {
	present := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if hasColumn(names, c) {
			present = append(present, c)
		}
	}
	return present
}

func hasColumn(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
