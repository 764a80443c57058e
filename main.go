package main

import "github.com/maastricht-university/emg-pipeline/cmd"

func main() {
	cmd.Execute()
}
