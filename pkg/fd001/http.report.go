package fd001

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/terralab/frp/pkg"
)

func InitializeReportRoutes(app, api *fiber.App) {
	api.Route("/001/001/report", func(router fiber.Router) {
		router.Get("/summary", pkg.FRPAuth, HandleGetMetricSummary)
		router.Get("/series", pkg.FRPAuth, HandleGetMetricSeries)
	})
}

/*
METRIC SUMMARY - COUNT / MEAN / STDDEV / MIN / MAX FOR ONE METRIC OVER A
TIME WINDOW; FEEDS THE PORTAL'S DEVICE DETAIL PAGE
*/
type MetricSummary struct {
	Serial string  `json:"serial"`
	Metric string  `json:"metric"`
	Start  int64   `json:"start"`
	End    int64   `json:"end"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float32 `json:"min"`
	Max    float32 `json:"max"`
}

func metricValue(smp Sample, metric string) (val float32, err error) {
	switch metric {
	case METRIC_TEMPERATURE:
		return smp.SmpTemp, nil
	case METRIC_HUMIDITY:
		return smp.SmpHumid, nil
	case METRIC_PRESSURE:
		return smp.SmpPress, nil
	case METRIC_BATTERY:
		return smp.SmpBat, nil
	case METRIC_SIGNAL:
		return smp.SmpSig, nil
	}
	return 0, fmt.Errorf(
		"unknown metric %q; must be one of: %s, %s, %s, %s, %s",
		metric, METRIC_TEMPERATURE, METRIC_HUMIDITY, METRIC_PRESSURE, METRIC_BATTERY, METRIC_SIGNAL,
	)
}

func reportWindow(c *fiber.Ctx) (start, end int64) {
	start, _ = strconv.ParseInt(c.Query("start", "0"), 10, 64)
	end, _ = strconv.ParseInt(c.Query("end", "9223372036854775807"), 10, 64)
	return
}

/* ?serial=...&metric=temperature&start=...&end=... */
func HandleGetMetricSummary(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Viewer(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be logged in to view reports",
		})
	}

	device, err := GetDeviceBySerial(c.Query("serial"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	metric := c.Query("metric", METRIC_TEMPERATURE)
	if _, err = metricValue(Sample{}, metric); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	start, end := reportWindow(c)
	smps, err := GetSamples(device.FRPDevID, start, end)
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	sum := MetricSummary{
		Serial: device.FRPDevSerial,
		Metric: metric,
		Start:  start,
		End:    end,
		Count:  len(smps),
	}

	if len(smps) > 0 {
		vals := make([]float32, len(smps))
		for i, smp := range smps {
			vals[i], _ = metricValue(smp, metric)
		}
		sum.Mean, sum.StdDev = pkg.MeanStdDev(vals)
		sum.Min, sum.Max = pkg.MinMaxFloat32(vals, 0)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"summary": sum},
	})
}

/* ?serial=...&metric=temperature&start=...&end=...; CHART-READY POINTS */
func HandleGetMetricSeries(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Viewer(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be logged in to view reports",
		})
	}

	device, err := GetDeviceBySerial(c.Query("serial"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	metric := c.Query("metric", METRIC_TEMPERATURE)
	if _, err = metricValue(Sample{}, metric); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	start, end := reportWindow(c)
	smps, err := GetSamples(device.FRPDevID, start, end)
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	xy := pkg.TSXY{}
	for _, smp := range smps {
		val, _ := metricValue(smp, metric)
		xy.X = append(xy.X, smp.SmpTime)
		xy.Y = append(xy.Y, val)
	}

	tsd := pkg.TimeSeriesData{Data: []pkg.TSDPoint{}}
	if len(xy.Y) > 0 {
		tsd = xy.TSD(0.1)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"metric": metric, "series": tsd},
	})
}
