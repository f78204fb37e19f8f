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

	"github.com/redis/go-redis/v9" // go get github.com/redis/go-redis/v9
)

/*
LIVE STATE CACHE

LAST-KNOWN DEVICE STATE IS CACHED SO DASHBOARD READS NEED NOT HIT POSTGRES.
OPTIONAL; ALL CALLS ARE NO-OPS WHEN REDIS IS DISABLED IN CONFIG.
*/
var Rdb *redis.Client

func CacheInit() (err error) {

	if !REDIS_ENABLED {
		return
	}

	Rdb = redis.NewClient(&redis.Options{
		Addr:     REDIS_ADDR,
		Password: REDIS_PW,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err = Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return LogErr(err)
	}

	LogChk(fmt.Sprintf("live state cache connected at %s", REDIS_ADDR))
	return
}

func CacheClose() {
	if Rdb == nil {
		return
	}
	Rdb.Close()
	Rdb = nil
}

func cacheDeviceStateKey(serial string) string {
	return fmt.Sprintf("fd:state:%s", serial)
}

func CacheSetDeviceState(ctx context.Context, serial, js string) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Set(ctx, cacheDeviceStateKey(serial), js, 0).Err(); err != nil {
		LogErr(err)
	}
}

func CacheGetDeviceState(ctx context.Context, serial string) (js string, ok bool) {
	if Rdb == nil {
		return "", false
	}
	js, err := Rdb.Get(ctx, cacheDeviceStateKey(serial)).Result()
	if err != nil {
		return "", false
	}
	return js, true
}
