package controllers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/internal/util"
)

type MachineRepo interface {
	FindAll() ([]*domain.Machine, error)
	Save(m *domain.Machine) (int64, error)
	SetActive(id int64, active bool) error
}

type IngredientRepo interface {
	FindAll() ([]*domain.Ingredient, error)
	Save(i *domain.Ingredient) (int64, error)
}

type BagRepo interface {
	Save(b *domain.Bag) (int64, error)
	SaveItem(item *domain.BagItem) (int64, error)
	FindItems(bagID int64) ([]domain.BagItem, error)
}

// DirectoryController manages the reference data the workflows resolve
// against: machines, ingredients and dispatched bags.
type DirectoryController struct {
	Auth        *AuthController
	Machines    MachineRepo
	Ingredients IngredientRepo
	Bags        BagRepo
}

func NewDirectoryController(auth *AuthController, machines MachineRepo, ingredients IngredientRepo, bags BagRepo) *DirectoryController {
	return &DirectoryController{Auth: auth, Machines: machines, Ingredients: ingredients, Bags: bags}
}

func (c *DirectoryController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/machines", c.Auth.RequireAuth(c.handleListMachines))
	mux.HandleFunc("POST /api/machines", c.Auth.RequireAuth(c.handleCreateMachine))
	mux.HandleFunc("POST /api/machines/{id}/active", c.Auth.RequireAuth(c.handleSetMachineActive))
	mux.HandleFunc("GET /api/ingredients", c.Auth.RequireAuth(c.handleListIngredients))
	mux.HandleFunc("POST /api/ingredients", c.Auth.RequireAuth(c.handleCreateIngredient))
	mux.HandleFunc("POST /api/bags", c.Auth.RequireAuth(c.handleCreateBag))
	mux.HandleFunc("GET /api/bags/{id}/items", c.Auth.RequireAuth(c.handleListBagItems))
}

func (c *DirectoryController) handleListMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := c.Machines.FindAll()
	if err != nil {
		http.Error(w, "could not load machines", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, machines)
}

type createMachineRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (c *DirectoryController) handleCreateMachine(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Auth.requireRole(w, r, domain.RoleManager); !ok {
		return
	}
	req, err := util.DecodeJSONBody[createMachineRequest](r)
	if err != nil || req.Code == "" || req.Name == "" {
		http.Error(w, "code and name are required", http.StatusBadRequest)
		return
	}

	m := &domain.Machine{Code: req.Code, Name: req.Name, Location: nullString(req.Location), Active: true}
	if _, err := c.Machines.Save(m); err != nil {
		http.Error(w, "could not save machine", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, m)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (c *DirectoryController) handleSetMachineActive(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Auth.requireRole(w, r, domain.RoleManager); !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid machine id", http.StatusBadRequest)
		return
	}
	req, err := util.DecodeJSONBody[setActiveRequest](r)
	if err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if err := c.Machines.SetActive(id, req.Active); err != nil {
		http.Error(w, "could not update machine", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DirectoryController) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := c.Ingredients.FindAll()
	if err != nil {
		http.Error(w, "could not load ingredients", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, ingredients)
}

type createIngredientRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	StockWeight float64 `json:"stockWeight"`
}

func (c *DirectoryController) handleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.Auth.requireRole(w, r, domain.RoleManager, domain.RoleWarehouse); !ok {
		return
	}
	req, err := util.DecodeJSONBody[createIngredientRequest](r)
	if err != nil || req.Code == "" || req.Name == "" {
		http.Error(w, "code and name are required", http.StatusBadRequest)
		return
	}
	if req.StockWeight < 0 {
		http.Error(w, "stockWeight must not be negative", http.StatusBadRequest)
		return
	}

	ing := &domain.Ingredient{Code: req.Code, Name: req.Name, Unit: req.Unit, StockWeight: req.StockWeight}
	if _, err := c.Ingredients.Save(ing); err != nil {
		http.Error(w, "could not save ingredient", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, ing)
}

type createBagRequest struct {
	Code      string `json:"code"`
	MachineID int64  `json:"machineId"`
	Note      string `json:"note"`
	Items     []struct {
		IngredientID int64   `json:"ingredientId"`
		IssuedWeight float64 `json:"issuedWeight"`
	} `json:"items"`
}

func (c *DirectoryController) handleCreateBag(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.Auth.requireRole(w, r, domain.RoleWarehouse)
	if !ok {
		return
	}
	req, err := util.DecodeJSONBody[createBagRequest](r)
	if err != nil || req.Code == "" || req.MachineID == 0 {
		http.Error(w, "code and machineId are required", http.StatusBadRequest)
		return
	}

	bag := &domain.Bag{
		Code:       req.Code,
		MachineID:  sql.NullInt64{Int64: req.MachineID, Valid: true},
		OperatorID: sql.NullInt64{Int64: actor.ID, Valid: true},
		Status:     domain.BagStatusDispatched,
		Note:       nullString(req.Note),
	}
	if _, err := c.Bags.Save(bag); err != nil {
		http.Error(w, "could not save bag", http.StatusInternalServerError)
		return
	}
	for _, it := range req.Items {
		item := &domain.BagItem{BagID: bag.ID, IngredientID: it.IngredientID, IssuedWeight: it.IssuedWeight}
		if _, err := c.Bags.SaveItem(item); err != nil {
			http.Error(w, "could not save bag item", http.StatusInternalServerError)
			return
		}
	}
	util.WriteJSONResponse(w, http.StatusCreated, bag)
}

func (c *DirectoryController) handleListBagItems(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid bag id", http.StatusBadRequest)
		return
	}
	items, err := c.Bags.FindItems(id)
	if err != nil {
		http.Error(w, "could not load bag items", http.StatusInternalServerError)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, items)
}
