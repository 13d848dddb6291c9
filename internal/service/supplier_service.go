package service

import (
	"context"
	"strings"

	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/pkg/apperror"
	"freightdesk/pkg/pagination"
)

// --- DTOs (shared by suppliers and forwarders) ---

type CreatePartyRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type UpdatePartyRequest struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validation("name cannot be empty")
	}
	return name, nil
}

// --- Suppliers ---

type SupplierService interface {
	List(ctx context.Context, p pagination.Params) (pagination.Page[model.Supplier], error)
	Get(ctx context.Context, id string) (*model.Supplier, error)
	Create(ctx context.Context, req CreatePartyRequest) (*model.Supplier, error)
	Update(ctx context.Context, id string, req UpdatePartyRequest) (*model.Supplier, error)
	Delete(ctx context.Context, id string) error
}

var supplierMessages = repoMessages{
	notFound:   "Supplier not found",
	duplicate:  "A supplier with this name already exists",
	referenced: "Supplier is still used by an order",
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) List(ctx context.Context, p pagination.Params) (pagination.Page[model.Supplier], error) {
	items, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return pagination.Page[model.Supplier]{}, supplierMessages.wrap("list suppliers", err)
	}
	return pagination.NewPage(items, p, total), nil
}

func (s *supplierService) Get(ctx context.Context, id string) (*model.Supplier, error) {
	uid, err := parseID(id, "supplier")
	if err != nil {
		return nil, err
	}
	supplier, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, supplierMessages.wrap("get supplier", err)
	}
	return supplier, nil
}

func (s *supplierService) Create(ctx context.Context, req CreatePartyRequest) (*model.Supplier, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	supplier := &model.Supplier{Name: name}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, supplierMessages.wrap("create supplier", err)
	}
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, id string, req UpdatePartyRequest) (*model.Supplier, error) {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if supplier.Name, err = cleanName(*req.Name); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, supplierMessages.wrap("update supplier", err)
	}
	return supplier, nil
}

func (s *supplierService) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id, "supplier")
	if err != nil {
		return err
	}
	return supplierMessages.wrap("delete supplier", s.repo.Delete(ctx, uid))
}

// --- Forwarders ---

type ForwarderService interface {
	List(ctx context.Context, p pagination.Params) (pagination.Page[model.Forwarder], error)
	Get(ctx context.Context, id string) (*model.Forwarder, error)
	Create(ctx context.Context, req CreatePartyRequest) (*model.Forwarder, error)
	Update(ctx context.Context, id string, req UpdatePartyRequest) (*model.Forwarder, error)
	Delete(ctx context.Context, id string) error
}

var forwarderMessages = repoMessages{
	notFound:   "Forwarder not found",
	duplicate:  "A forwarder with this name already exists",
	referenced: "Forwarder is still used by an order",
}

type forwarderService struct {
	repo repository.ForwarderRepository
}

func NewForwarderService(repo repository.ForwarderRepository) ForwarderService {
	return &forwarderService{repo: repo}
}

func (s *forwarderService) List(ctx context.Context, p pagination.Params) (pagination.Page[model.Forwarder], error) {
	items, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return pagination.Page[model.Forwarder]{}, forwarderMessages.wrap("list forwarders", err)
	}
	return pagination.NewPage(items, p, total), nil
}

func (s *forwarderService) Get(ctx context.Context, id string) (*model.Forwarder, error) {
	uid, err := parseID(id, "forwarder")
	if err != nil {
		return nil, err
	}
	forwarder, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, forwarderMessages.wrap("get forwarder", err)
	}
	return forwarder, nil
}

func (s *forwarderService) Create(ctx context.Context, req CreatePartyRequest) (*model.Forwarder, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	forwarder := &model.Forwarder{Name: name}
	if err := s.repo.Create(ctx, forwarder); err != nil {
		return nil, forwarderMessages.wrap("create forwarder", err)
	}
	return forwarder, nil
}

func (s *forwarderService) Update(ctx context.Context, id string, req UpdatePartyRequest) (*model.Forwarder, error) {
	forwarder, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if forwarder.Name, err = cleanName(*req.Name); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, forwarder); err != nil {
		return nil, forwarderMessages.wrap("update forwarder", err)
	}
	return forwarder, nil
}

func (s *forwarderService) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id, "forwarder")
	if err != nil {
		return err
	}
	return forwarderMessages.wrap("delete forwarder", s.repo.Delete(ctx, uid))
}
