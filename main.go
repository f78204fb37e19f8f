/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/terralab/frp/pkg"
	"github.com/terralab/frp/pkg/fd001"
	"github.com/terralab/frp/pkg/portal"
)

func main() {

	pkg.ConfigInit()

	/* ADMIN DB - CONNECT TO THE ADMIN DATABASE */
	if err := pkg.ADB.Connect(); err != nil {
		log.Fatal(err)
	}
	defer pkg.ADB.Disconnect()

	cleanDB := flag.Bool("clean", false, "Drop and recreate the FRP database")
	flag.Parse()

	if *cleanDB {
		pkg.ADB.DropDatabase(pkg.FRP_DB)
	}

	/* CREATE OR MIGRATE FRP DATABASE & CONNECT */
	exists := pkg.ADB.CheckDatabaseExists(pkg.FRP_DB)
	if !exists {
		if err := pkg.ADB.CreateDatabase(pkg.FRP_DB); err != nil {
			log.Fatal(err)
		}
	}
	if err := pkg.FRP.Connect(); err != nil {
		log.Fatal(err)
	}
	defer pkg.FRP.Disconnect()

	/* IF FRP DATABASE DIDN'T ALREADY EXIST, CREATE TABLES, OTHERWISE MIGRATE */
	domainModels := append(fd001.Models(), portal.Models()...)
	if err := pkg.FRP.CreateFRPTables(exists, domainModels...); err != nil {
		log.Fatal(err)
	}
	if err := fd001.EnsureDefaultDeviceType(); err != nil {
		pkg.LogErr(err)
	}

	/* OPTIONAL SUBSYSTEMS - LIVE STATE CACHE & TIME SERIES STORE */
	pkg.CacheInit()
	defer pkg.CacheClose()
	pkg.TSDBInit()
	defer pkg.TSDBClose()

	/* MQTT - FD001 - CONNECT A BROADCAST CLIENT FOR EVERY REGISTERED DEVICE */
	fmt.Println("\n\nConnecting all FD001 Device Clients...")
	fd001.DeviceClient_ConnectAll()
	defer fd001.DeviceClient_DisconnectAll()

	/* WATCHDOG - AGE SILENT DEVICES TO inactive / lost */
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fd001.RunWatchdog(ctx)

	/* MAIN SERVER */
	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     pkg.CORS_ALLOWED_ORIGINS,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Cache-Control",
		AllowMethods:     "GET, POST",
		AllowCredentials: true,
	}))

	/* API ROUTES */
	api := fiber.New()
	app.Mount("/api", api)

	pkg.InitializeUserRoutes(app, api)
	fd001.InitializeUploadRoutes(app, api)
	fd001.InitializeDeviceRoutes(app, api)
	fd001.InitializeReportRoutes(app, api)
	portal.InitializeDatasetRoutes(app, api)
	portal.InitializeContactRoutes(app, api)
	portal.InitializeNotificationRoutes(app, api)

	api.All("*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": fmt.Sprintf("Path: %v does not exist on this server", c.Path()),
		})
	})

	log.Fatal(app.Listen(pkg.HTTP_ADDR))
}
