package portal

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/terralab/frp/pkg"
)

func InitializeNotificationRoutes(app, api *fiber.App) {
	api.Route("/notification", func(router fiber.Router) {
		router.Get("/list", pkg.FRPAuth, HandleGetNotifications)
		router.Post("/read", pkg.FRPAuth, HandleMarkNotificationRead)
	})
}

/*
?unread=true

ADMINS SEE THE BROADCAST SCOPE; EVERYONE ELSE SEES THEIR OWN
*/
func HandleGetNotifications(c *fiber.Ctx) (err error) {

	scope, _ := c.Locals("sub").(string)
	if pkg.UserRole_Admin(c.Locals("role")) {
		scope = NOTIFY_SCOPE_ADMIN
	}

	ntfs, err := GetNotifications(scope, c.QueryBool("unread"))
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"notifications": ntfs},
	})
}

func HandleMarkNotificationRead(c *fiber.Ctx) (err error) {

	ntf := Notification{}
	if err = c.BodyParser(&ntf); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	if err = MarkNotificationRead(ntf.NtfID); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("Notification %d marked read", ntf.NtfID),
	})
}
