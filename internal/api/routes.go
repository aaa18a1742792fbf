package api

import (
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ergoscope/analytics-engine/internal/response"
	"github.com/ergoscope/analytics-engine/internal/tools"
)

// The transport is deliberately thin: each route parses parameters, calls
// the matching tool operation, and writes the envelope. All semantics live
// in internal/tools and below.

type APIHandler struct {
	service *tools.Service
}

func SetupRouter(service *tools.Service) *gin.Engine {
	r := gin.Default()

	// CORS — configurable via ALLOWED_ORIGINS (comma-separated), * when unset.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(RequestID())

	handler := &APIHandler{service: service}

	// Router-owned limiter; it lives for the process, Stop exists for
	// callers that tear routers down.
	limiter := NewRateLimiter(120, 30)

	api := r.Group("/api/v1")
	api.Use(AuthMiddleware(), limiter.Middleware())
	{
		api.GET("/health", handler.handleHealth)
		api.GET("/status", handler.handleStatus)

		api.GET("/addresses/:address/balance", handler.handleAddressBalance)
		api.GET("/addresses/:address/history", handler.handleAddressHistory)
		api.GET("/addresses/:address/interactions", handler.handleAddressInteractions)
		api.GET("/addresses/:address/analyze", handler.handleAnalyzeAddress)
		api.GET("/addresses/:address/boxes", handler.handleBoxesByAddress)
		api.GET("/addressbook", handler.handleAddressBook)

		api.GET("/transactions/:id", handler.handleTransaction)
		api.GET("/transactions/byIndex/:index", handler.handleTransactionByIndex)
		api.POST("/transactions", handler.handleSubmitTransaction)

		api.GET("/blocks/latest", handler.handleLatestBlocks)
		api.GET("/blocks/at/:height", handler.handleBlockByHeight)
		api.GET("/blocks/:id", handler.handleBlock)
		api.GET("/blocks/:id/transactions", handler.handleBlockTransactions)

		api.GET("/boxes/:id", handler.handleBox)
		api.GET("/boxes/byIndex/:index", handler.handleBoxByIndex)

		api.GET("/tokens/search", handler.handleSearchToken)
		api.GET("/tokens/:id", handler.handleToken)
		api.GET("/tokens/:id/holders", handler.handleTokenHolders)
		api.GET("/tokens/:id/boxes", handler.handleBoxesByToken)

		api.GET("/collections/search", handler.handleSearchCollections)
		api.GET("/collections/:id/holders", handler.handleCollectionHolders)

		api.GET("/eips", handler.handleListEIPs)
		api.GET("/eips/:number", handler.handleGetEIP)

		api.GET("/mempool/statistics", handler.handleMempoolStatistics)
		api.GET("/wallet", handler.handleNodeWallet)
		api.GET("/indexedHeight", handler.handleIndexedHeight)
	}

	return r
}

// write maps the envelope status onto an HTTP code so plain HTTP clients see
// failures without inspecting the body.
func write(c *gin.Context, r *response.Response) {
	code := http.StatusOK
	if r.Status == response.StatusError {
		code = http.StatusBadGateway
		msg := strings.ToLower(r.Message)
		switch {
		case strings.Contains(msg, "must"):
			code = http.StatusBadRequest
		case strings.Contains(msg, "not found"):
			code = http.StatusNotFound
		}
	}
	c.JSON(code, r)
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *APIHandler) handleStatus(c *gin.Context) {
	write(c, h.service.BlockchainStatus(c.Request.Context()))
}

func (h *APIHandler) handleAddressBalance(c *gin.Context) {
	write(c, h.service.GetAddressBalance(c.Request.Context(), c.Param("address")))
}

func (h *APIHandler) handleAddressHistory(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 20)
	write(c, h.service.GetAddressHistory(c.Request.Context(), c.Param("address"), offset, limit))
}

func (h *APIHandler) handleAddressInteractions(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 0)
	write(c, h.service.GetAddressInteractions(c.Request.Context(), c.Param("address"), offset, limit))
}

func (h *APIHandler) handleAnalyzeAddress(c *gin.Context) {
	depth := intQuery(c, "depth", 2)
	txLimit := intQuery(c, "tx_limit", 5)
	write(c, h.service.AnalyzeAddress(c.Request.Context(), c.Param("address"), depth, txLimit))
}

func (h *APIHandler) handleBoxesByAddress(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 0)
	unspent := c.Query("unspent") == "true"
	write(c, h.service.GetBoxesByAddress(c.Request.Context(), c.Param("address"), offset, limit, unspent))
}

func (h *APIHandler) handleAddressBook(c *gin.Context) {
	write(c, h.service.GetAddressBook(c.Request.Context()))
}

func (h *APIHandler) handleTransaction(c *gin.Context) {
	write(c, h.service.GetTransaction(c.Request.Context(), c.Param("id")))
}

func (h *APIHandler) handleTransactionByIndex(c *gin.Context) {
	index, err := strconv.ParseInt(c.Param("index"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	write(c, h.service.GetTransactionByIndex(c.Request.Context(), index))
}

func (h *APIHandler) handleSubmitTransaction(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	write(c, h.service.SubmitTransaction(c.Request.Context(), body))
}

func (h *APIHandler) handleLatestBlocks(c *gin.Context) {
	write(c, h.service.GetLatestBlocks(c.Request.Context(), intQuery(c, "limit", 10)))
}

func (h *APIHandler) handleBlockByHeight(c *gin.Context) {
	height, err := strconv.Atoi(c.Param("height"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "height must be an integer"})
		return
	}
	write(c, h.service.GetBlockByHeight(c.Request.Context(), height))
}

func (h *APIHandler) handleBlock(c *gin.Context) {
	write(c, h.service.GetBlock(c.Request.Context(), c.Param("id")))
}

func (h *APIHandler) handleBlockTransactions(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 0)
	write(c, h.service.GetBlockTransactions(c.Request.Context(), c.Param("id"), offset, limit))
}

func (h *APIHandler) handleBox(c *gin.Context) {
	write(c, h.service.GetBox(c.Request.Context(), c.Param("id")))
}

func (h *APIHandler) handleBoxByIndex(c *gin.Context) {
	index, err := strconv.ParseInt(c.Param("index"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	write(c, h.service.GetBoxByIndex(c.Request.Context(), index))
}

func (h *APIHandler) handleSearchToken(c *gin.Context) {
	write(c, h.service.SearchToken(c.Request.Context(), c.Query("query")))
}

func (h *APIHandler) handleToken(c *gin.Context) {
	write(c, h.service.GetToken(c.Request.Context(), c.Param("id")))
}

func (h *APIHandler) handleTokenHolders(c *gin.Context) {
	includeRaw := c.DefaultQuery("include_raw", "true") == "true"
	includeAnalysis := c.DefaultQuery("include_analysis", "true") == "true"
	write(c, h.service.GetTokenHolders(c.Request.Context(), c.Param("id"), includeRaw, includeAnalysis))
}

func (h *APIHandler) handleBoxesByToken(c *gin.Context) {
	offset := intQuery(c, "offset", 0)
	limit := intQuery(c, "limit", 0)
	unspent := c.DefaultQuery("unspent", "true") == "true"
	write(c, h.service.GetBoxesByToken(c.Request.Context(), c.Param("id"), offset, limit, unspent))
}

func (h *APIHandler) handleSearchCollections(c *gin.Context) {
	write(c, h.service.SearchCollections(c.Request.Context(), c.Query("query"), intQuery(c, "limit", 10)))
}

func (h *APIHandler) handleCollectionHolders(c *gin.Context) {
	includeRaw := c.DefaultQuery("include_raw", "true") == "true"
	includeAnalysis := c.DefaultQuery("include_analysis", "true") == "true"
	write(c, h.service.GetCollectionHolders(c.Request.Context(), c.Param("id"), includeRaw, includeAnalysis))
}

func (h *APIHandler) handleListEIPs(c *gin.Context) {
	write(c, h.service.ListEIPs())
}

func (h *APIHandler) handleGetEIP(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "EIP number must be an integer"})
		return
	}
	write(c, h.service.GetEIP(number))
}

func (h *APIHandler) handleMempoolStatistics(c *gin.Context) {
	write(c, h.service.GetMempoolStatistics(c.Request.Context()))
}

func (h *APIHandler) handleNodeWallet(c *gin.Context) {
	write(c, h.service.GetNodeWallet(c.Request.Context()))
}

func (h *APIHandler) handleIndexedHeight(c *gin.Context) {
	write(c, h.service.GetIndexedHeight(c.Request.Context()))
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
