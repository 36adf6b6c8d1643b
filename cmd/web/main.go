package main

import "crosslist_backend/internal/app"

func main() {
	app.Run()
}
