package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/daktre/theta-data-explorer/internal/api"
	"github.com/daktre/theta-data-explorer/internal/session"
)

const listenAddr = ":8080"

func main() {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = api.Serializer{}
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	h := api.NewHandler(session.NewStore())
	h.RegisterRoutes(e)

	log.Printf("data explorer listening on %s", listenAddr)
	e.Logger.Fatal(e.Start(listenAddr))
}
