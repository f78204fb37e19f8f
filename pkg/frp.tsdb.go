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
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2" // go get github.com/influxdata/influxdb-client-go/v2
	"github.com/influxdata/influxdb-client-go/v2/api"
)

/*
TIME-SERIES ARCHIVE

TELEMETRY IS MIRRORED TO INFLUXDB FOR LONG-WINDOW DASHBOARD QUERIES.
OPTIONAL; ALL CALLS ARE NO-OPS WHEN INFLUX IS DISABLED IN CONFIG.
*/
var tsdbClient influxdb2.Client
var tsdbWrite api.WriteAPIBlocking

func TSDBInit() (err error) {

	if !INFLUX_ENABLED {
		return
	}

	tsdbClient = influxdb2.NewClient(INFLUX_URL, INFLUX_TOKEN)
	tsdbWrite = tsdbClient.WriteAPIBlocking(INFLUX_ORG, INFLUX_BUCKET)

	LogChk(fmt.Sprintf("time-series archive connected at %s", INFLUX_URL))
	return
}

func TSDBClose() {
	if tsdbClient == nil {
		return
	}
	tsdbClient.Close()
	tsdbClient = nil
	tsdbWrite = nil
}

/* WRITE ONE TELEMETRY POINT; tags IDENTIFY THE DEVICE, fields CARRY THE READINGS */
func TSDBWritePoint(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, t int64) {

	if tsdbWrite == nil {
		return
	}

	p := influxdb2.NewPoint(measurement, tags, fields, time.UnixMilli(t).UTC())
	if err := tsdbWrite.WritePoint(ctx, p); err != nil {
		LogErr(err)
	}
}
