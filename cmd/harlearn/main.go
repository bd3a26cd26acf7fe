// Command harlearn trains, inspects and applies random forest classifiers
// for smartphone-based human activity recognition on the UCI HAR dataset.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
