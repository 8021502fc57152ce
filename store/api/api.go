package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrebq/packbox/internal/httpjson"
	"github.com/andrebq/packbox/internal/logutil"
	"github.com/andrebq/packbox/store"
	"github.com/julienschmidt/httprouter"
)

type (
	// Items is the part of store.Store used by the item routes
	Items interface {
		AddItem(ctx context.Context, name string, box int) (store.Item, error)
		ItemsInBox(ctx context.Context, box int) ([]store.Item, error)
		FindItems(ctx context.Context, fragment string) ([]store.Item, error)
	}

	packRequest struct {
		ItemName  string `json:"itemName" validate:"required"`
		BoxNumber int    `json:"boxNumber" validate:"required,gt=0"`
	}

	unpackRequest struct {
		BoxNumber int `json:"boxNumber" validate:"required,gt=0"`
	}

	findRequest struct {
		ItemName string `json:"itemName" validate:"required"`
	}

	packResponse struct {
		Message string     `json:"message"`
		Item    store.Item `json:"item"`
	}
)

// Routes lists the paths served by Mount
var Routes = []string{"/packing", "/unpack", "/item"}

// Mount registers the item endpoints on router, every one of them wrapped
// by protect.
func Mount(router *httprouter.Router, items Items, protect func(http.Handler) http.Handler) {
	router.Handler(http.MethodPost, "/packing", protect(pack(items)))
	router.Handler(http.MethodPost, "/unpack", protect(unpack(items)))
	router.Handler(http.MethodPost, "/item", protect(find(items)))
}

func pack(items Items) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logutil.GetOrDefault(r.Context())
		var req packRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Message(w, http.StatusBadRequest, "Missing item name or box number")
			return
		}
		item, err := items.AddItem(r.Context(), req.ItemName, req.BoxNumber)
		var invalid store.InvalidItem
		if errors.As(err, &invalid) {
			httpjson.Message(w, http.StatusBadRequest, "Missing item name or box number")
			return
		} else if err != nil {
			log.Error().Err(err).Int("box", req.BoxNumber).Msg("Unable to add item")
			httpjson.Message(w, http.StatusInternalServerError, "Error adding item")
			return
		}
		log.Info().Str("item", item.ID).Int("box", item.BoxNumber).Msg("Item packed")
		httpjson.Write(w, http.StatusOK, packResponse{Message: "Item added successfully", Item: item})
	}
}

func unpack(items Items) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logutil.GetOrDefault(r.Context())
		var req unpackRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Message(w, http.StatusBadRequest, "Missing box number")
			return
		}
		found, err := items.ItemsInBox(r.Context(), req.BoxNumber)
		if err != nil {
			log.Error().Err(err).Int("box", req.BoxNumber).Msg("Unable to retrieve items")
			httpjson.Message(w, http.StatusInternalServerError, "Error retrieving items")
			return
		}
		if len(found) == 0 {
			httpjson.Message(w, http.StatusNotFound, "No items found")
			return
		}
		httpjson.Write(w, http.StatusOK, found)
	}
}

func find(items Items) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logutil.GetOrDefault(r.Context())
		var req findRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Message(w, http.StatusBadRequest, "Missing item name")
			return
		}
		found, err := items.FindItems(r.Context(), req.ItemName)
		if err != nil {
			log.Error().Err(err).Msg("Unable to retrieve item")
			httpjson.Message(w, http.StatusInternalServerError, "Error retrieving item")
			return
		}
		if len(found) == 0 {
			httpjson.Message(w, http.StatusNotFound, "Item not found")
			return
		}
		httpjson.Write(w, http.StatusOK, found)
	}
}
