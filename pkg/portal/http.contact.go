package portal

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/terralab/frp/pkg"
)

func InitializeContactRoutes(app, api *fiber.App) {
	api.Route("/contact", func(router fiber.Router) {

		/* PUBLIC; NO ACCOUNT REQUIRED TO REACH THE LAB */
		router.Post("/submit", HandleSubmitContactMessage)

		/* CONTACT-ADMIN-LEVEL OPERATIONS */
		router.Get("/list", pkg.FRPAuth, HandleGetContactMessages)
		router.Post("/handle", pkg.FRPAuth, HandleContactMessageHandled)
	})
}

func HandleSubmitContactMessage(c *fiber.Ctx) (err error) {

	/* PARSE AND VALIDATE REQUEST DATA */
	cm := ContactMessage{}
	if err = c.BodyParser(&cm); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}
	if errors := pkg.ValidateStruct(cm); errors != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "fail",
			"errors": errors,
		})
	}

	if err = WriteContactMessage(&cm); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	CreateNotification(
		NOTIFY_SCOPE_ADMIN,
		fmt.Sprintf("Contact form: %s", cm.CMSubject),
		fmt.Sprintf("%s <%s>: %s", cm.CMName, cm.CMEmail, cm.CMBody),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Thank you; the lab will be in touch",
	})
}

/* ADMIN ONLY; ?unhandled=true */
func HandleGetContactMessages(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Admin(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an administrator to view contact messages",
		})
	}

	cms, err := GetContactMessages(c.QueryBool("unhandled"))
	if err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"messages": cms},
	})
}

/* ADMIN ONLY */
func HandleContactMessageHandled(c *fiber.Ctx) (err error) {

	/* CHECK USER PERMISSION */
	if !pkg.UserRole_Admin(c.Locals("role")) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "fail",
			"message": "You must be an administrator to handle contact messages",
		})
	}

	cm := ContactMessage{}
	if err = c.BodyParser(&cm); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	if err = MarkContactMessageHandled(cm.CMID); err != nil {
		pkg.LogErr(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "fail",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("Message %d marked handled", cm.CMID),
	})
}
