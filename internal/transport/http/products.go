package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/furuknap/marketmaster/internal/app"
	"github.com/furuknap/marketmaster/internal/domain"
)

// ProductService is the minimal interface needed by the product endpoints.
type ProductService interface {
	CreateProduct(ctx context.Context, in app.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in app.ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// HandleProducts serves GET (list) and POST (create) on /products.
func HandleProducts(svc ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			products, err := svc.ListProducts(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]productResponse, 0, len(products))
			for _, p := range products {
				resp = append(resp, toProductResponse(p))
			}
			writeJSON(w, http.StatusOK, resp)
			return
		case http.MethodPost:
			var req productRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			product, err := svc.CreateProduct(r.Context(), app.ProductInput{
				Name:     req.Name,
				Price:    req.Price,
				Cost:     req.Cost,
				Category: req.Category,
			})
			if err != nil {
				writeProductError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toProductResponse(product))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleProductByID serves PUT (update) and DELETE on /products/{id}.
func HandleProductByID(svc ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathSuffix(r.URL.Path, "/products/")
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodPut:
			var req productRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			product, err := svc.UpdateProduct(r.Context(), id, app.ProductInput{
				Name:     req.Name,
				Price:    req.Price,
				Cost:     req.Cost,
				Category: req.Category,
			})
			if err != nil {
				writeProductError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toProductResponse(product))
			return
		case http.MethodDelete:
			if err := svc.DeleteProduct(r.Context(), id); err != nil {
				writeProductError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

func writeProductError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrProductNameRequired:
		writeError(w, http.StatusBadRequest, codeProductNameRequired, err.Error())
	case domain.ErrInvalidPrice:
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case domain.ErrInvalidCost:
		writeError(w, http.StatusBadRequest, codeInvalidCost, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrProductNotFound:
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type productRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Cost     float64 `json:"cost"`
	Category string  `json:"category"`
}

type productResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Cost      float64   `json:"cost"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Cost:      p.Cost,
		Category:  p.Category,
		CreatedAt: p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// pathSuffix extracts the single trailing path element after prefix.
func pathSuffix(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
