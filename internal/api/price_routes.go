package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/pyLexxDramma/deribit-client/internal/models"
)

func (s *Server) handleAllPrices(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker query parameter is required")
		return
	}

	prices, err := s.prices.ListPrices(r.Context(), ticker)
	if err != nil {
		log.Error().Str("ticker", ticker).Err(err).Msg("list prices failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch prices")
		return
	}
	if prices == nil {
		prices = []models.Price{}
	}
	writeJSON(w, http.StatusOK, prices)
}

func (s *Server) handleLastPrice(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker query parameter is required")
		return
	}

	price, err := s.prices.LatestPrice(r.Context(), ticker)
	if err != nil {
		log.Error().Str("ticker", ticker).Err(err).Msg("latest price failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch latest price")
		return
	}
	if price == nil {
		writeError(w, http.StatusNotFound, "price not found")
		return
	}
	writeJSON(w, http.StatusOK, price)
}

func (s *Server) handlePriceByDate(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker query parameter is required")
		return
	}

	date, err := strconv.ParseInt(r.URL.Query().Get("date"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be a Unix timestamp in seconds")
		return
	}

	price, err := s.prices.PriceAtDate(r.Context(), ticker, date)
	if err != nil {
		log.Error().Str("ticker", ticker).Int64("date", date).Err(err).Msg("price by date failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch price")
		return
	}
	if price == nil {
		writeError(w, http.StatusNotFound, "price not found")
		return
	}
	writeJSON(w, http.StatusOK, price)
}
