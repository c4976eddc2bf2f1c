package main

import "github.com/010m010/PMSChartAnalyzer/cmd"

func main() {
	cmd.Execute()
}
