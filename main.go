package main

import "task-kpi-system.com/task-kpi-system/cmd"

func main() {
	cmd.Execute()
}
