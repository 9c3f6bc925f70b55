package main

import "example.com/app/values"

func main() {
	e := values.New()
	if !e.SetValue("x") {
		return
	}
	_ = -values.Helper(1)
	n := e.SetValue(
		"multi",
	)
	_ = !n
	_ = `e.SetValue("raw")`
	// +values.Helper(2)
}
