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

package pkg

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt" // go get golang.org/x/crypto/bcrypt

	"gorm.io/driver/postgres" // go get gorm.io/driver/postgres
	"gorm.io/gorm"            // go get gorm.io/gorm
	"gorm.io/gorm/logger"
)

/*
	DATABASE CLIENT

ALL DATABASES IN THE FRP ARE ACCESSED VIA A DBClient
*/
type DBClient struct {
	ConnStr string
	*gorm.DB

	/* WAIT GROUP USED TO PREVENT DISCONNECTION WHILE WRITES ARE PENDING */
	WG *sync.WaitGroup
}

func (dbc *DBClient) GetDBName() string {
	str := strings.Split(dbc.ConnStr, "/")
	if len(str) == 4 {
		return str[3]
	}
	return ""
}

func (dbc *DBClient) Connect() (err error) {

	if dbc.DB, err = gorm.Open(postgres.Open(dbc.ConnStr), &gorm.Config{}); err != nil {
		return LogErr(err)
	}
	dbc.DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	dbc.DB.Logger = logger.Default.LogMode(logger.Error)
	dbc.WG = &sync.WaitGroup{}

	return err
}

func (dbc *DBClient) Disconnect() (err error) {

	/* ENSURE ALL PENDING WRITES ARE COMPLETE BEFORE DISCONNECTION */
	if dbc.WG != nil {
		dbc.WG.Wait()
	}

	db, err := dbc.DB.DB()
	if err != nil {
		return LogErr(err)
	}
	if err = db.Close(); err != nil {
		return LogErr(err)
	}
	return
}

/*
	ADMIN DATABASE

USED TO MANAGE THE FRP DATABASE ON THIS SERVER
*/
var ADB ADMINDatabase = ADMINDatabase{}

type ADMINDatabase struct{ DBClient }

func (adb ADMINDatabase) CreateDatabase(db_name string) (err error) {
	db_name = strings.ToLower(db_name)
	createDBCommand := fmt.Sprintf(`CREATE DATABASE %s WITH OWNER = %s
		ENCODING = 'UTF8' LC_COLLATE = 'C.UTF-8' LC_CTYPE = 'C.UTF-8' TABLESPACE = pg_default CONNECTION LIMIT = -1 IS_TEMPLATE = False;`,
		db_name, DB_USER,
	)
	LogChk(fmt.Sprintf("creating database %s", db_name))
	res := adb.DB.Exec(createDBCommand)
	err = res.Error
	return
}

func (adb ADMINDatabase) CheckDatabaseExists(db_name string) (exists bool) {
	db_name = strings.ToLower(db_name)
	checkExistsCommand := `SELECT EXISTS ( SELECT datname FROM pg_catalog.pg_database WHERE datname=? )`
	adb.DB.Raw(checkExistsCommand, db_name).Scan(&exists)
	return
}

func (adb ADMINDatabase) DropDatabase(db_name string) {
	db_name = strings.ToLower(db_name)
	dropDBCommand := fmt.Sprintf(`DROP DATABASE %s WITH (FORCE)`, db_name)
	adb.DB.Exec(dropDBCommand)
}

/*
	FRP DATABASE

HOLDS USERS, THE DEVICE REGISTRY, TELEMETRY, ALERTS AND PORTAL RECORDS
*/
var FRP FRPDatabase = FRPDatabase{}

type FRPDatabase struct{ DBClient }

/*
CREATE OR MIGRATE THE FRP TABLES

CORE MODELS LIVE IN THIS PACKAGE; DOMAIN PACKAGES PASS THEIR OWN MODELS IN
AT STARTUP SO THIS PACKAGE NEED NOT IMPORT THEM
*/
func (frp FRPDatabase) CreateFRPTables(exists bool, domainModels ...interface{}) (err error) {

	models := []interface{}{
		&User{},
		&FRPDev{},
		&FRPError{},
	}
	models = append(models, domainModels...)

	if exists {
		err = frp.DB.AutoMigrate(models...)
	} else {
		if err = frp.DB.Migrator().CreateTable(models...); err != nil {
			return err
		}

		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(SPR_PW), bcrypt.DefaultCost)
		newUser := User{
			Name:     SPR_USER,
			Email:    strings.ToLower(SPR_EMAIL),
			Password: string(hashedPassword),
			Role:     ROLE_SUPER,
		}
		if result := frp.DB.Create(&newUser); result.Error != nil {
			LogErr(result.Error)
			err = result.Error
		}
	}

	return err
}
