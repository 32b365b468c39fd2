package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hellouniverse/transfer-service/internal/account"
	"github.com/hellouniverse/transfer-service/internal/directory"
	"github.com/hellouniverse/transfer-service/internal/events"
	"github.com/hellouniverse/transfer-service/internal/handler"
	"github.com/hellouniverse/transfer-service/internal/ledger"
	"github.com/hellouniverse/transfer-service/internal/middleware"
	"github.com/hellouniverse/transfer-service/internal/pin"
	"github.com/hellouniverse/transfer-service/internal/transfer"
	"github.com/hellouniverse/transfer-service/internal/utils"
	"github.com/shopspring/decimal"
)

func main() {
	openingBalance, err := decimal.NewFromString(getEnv("OPENING_BALANCE", "15750.50"))
	if err != nil {
		log.Fatalf("Invalid OPENING_BALANCE: %v", err)
	}

	pinHash, err := utils.HashPin(getEnv("TRANSFER_PIN", "123456"))
	if err != nil {
		log.Fatalf("Failed to hash transfer PIN: %v", err)
	}

	// Event bus and account context: the account debits itself on settlement.
	bus := events.NewBus()
	acct := account.New(openingBalance)
	acct.SubscribeTo(bus)

	led := ledger.New()
	authorizer := transfer.New(directory.Default(), pin.NewBcryptVerifier(pinHash), led, bus, transfer.Options{})

	transferHandler := handler.NewTransferHandler(authorizer, acct, led)

	// Setup router
	router := gin.Default()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Session start issues the token the remaining steps require.
	router.POST("/v1/transfer-sessions", transferHandler.StartSession)

	session := router.Group("/v1/transfer-sessions/current", middleware.SessionAuth())
	{
		session.POST("/recipient", transferHandler.ResolveRecipient)
		session.PATCH("/draft", transferHandler.UpdateDraft)
		session.POST("/advance", transferHandler.AdvanceToConfirm)
		session.POST("/confirm", transferHandler.Confirm)
		session.POST("/back", transferHandler.Back)
		session.POST("/pin", transferHandler.SubmitPin)
		session.DELETE("", transferHandler.CancelSession)
	}

	router.GET("/v1/transactions", transferHandler.ListTransactions)

	port := getEnv("PORT", "8080")
	log.Printf("Transfer service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
