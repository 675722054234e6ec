package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ibadah-companion-backend/internal/zakat"
)

type maalRequest struct {
	GoldPricePerGram float64 `json:"goldPricePerGram" binding:"required"`
	TotalWealth      float64 `json:"totalWealth"`
}

type incomeRequest struct {
	GoldPricePerGram float64 `json:"goldPricePerGram" binding:"required"`
	MonthlyIncome    float64 `json:"monthlyIncome"`
}

type fitrahRequest struct {
	StapleFoodPricePerKg float64 `json:"stapleFoodPricePerKg" binding:"required"`
	People               int     `json:"people" binding:"required"`
}

// ZakatResponse adds display strings to a calculation.
type ZakatResponse struct {
	zakat.Result
	NisabText  string `json:"nisabText,omitempty"`
	AmountText string `json:"amountText"`
}

func respondZakat(c *gin.Context, r zakat.Result, err error) {
	if err != nil {
		if errors.Is(err, zakat.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := ZakatResponse{Result: r, AmountText: zakat.FormatRupiah(r.Amount)}
	if r.Nisab > 0 {
		resp.NisabText = zakat.FormatRupiah(r.Nisab)
	}
	c.JSON(http.StatusOK, resp)
}

// PostZakatMaal handles POST /api/zakat/maal.
func (h *Handler) PostZakatMaal(c *gin.Context) {
	var req maalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.cfg.Zakat.Maal(req.GoldPricePerGram, req.TotalWealth)
	respondZakat(c, r, err)
}

// PostZakatIncome handles POST /api/zakat/income.
func (h *Handler) PostZakatIncome(c *gin.Context) {
	var req incomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.cfg.Zakat.Income(req.GoldPricePerGram, req.MonthlyIncome)
	respondZakat(c, r, err)
}

// PostZakatFitrah handles POST /api/zakat/fitrah.
func (h *Handler) PostZakatFitrah(c *gin.Context) {
	var req fitrahRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.cfg.Zakat.Fitrah(req.StapleFoodPricePerKg, req.People)
	respondZakat(c, r, err)
}
