package main

import (
	"log"

	"github.com/manugamu/pfc/app"
)

func main() {
	application, err := app.NewApp().
		WithAutoConfig().
		WithAuth().
		WithEvents().
		WithFallaChats().
		WithHandlers().
		Build()
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	application.Run()
}
