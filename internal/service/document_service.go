// FILE: internal/service/document_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"medivault-be/internal/constant"
	"medivault-be/internal/dto"
	"medivault-be/internal/entity"
	"medivault-be/internal/repository/specification"
	"medivault-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
	}
}

func (ds *documentService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		result = append(result, toDocumentResponse(doc))
	}
	return result, nil
}

func (ds *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := ds.ownedDocument(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

func (ds *documentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	status := req.Status
	if status == "" {
		// Fresh uploads stay in review until their analysis is confirmed.
		status = constant.DocumentStatusReview
	}

	doc := entity.Document{
		Id:             uuid.New(),
		UserId:         userId,
		DisplayName:    req.DisplayName,
		Filename:       req.Filename,
		Status:         status,
		SearchSummary:  req.SearchSummary,
		StructuredData: req.StructuredData,
		CreatedAt:      time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	return &dto.CreateDocumentResponse{
		Id: doc.Id,
	}, nil
}

func (ds *documentService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	doc, err := ds.ownedDocument(ctx, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc.DisplayName = req.DisplayName
	if req.Status != "" {
		doc.Status = req.Status
	}
	doc.SearchSummary = req.SearchSummary
	doc.StructuredData = req.StructuredData
	doc.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	return &dto.UpdateDocumentResponse{
		Id:        doc.Id,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (ds *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	if _, err := ds.ownedDocument(ctx, userId, id); err != nil {
		return err
	}
	return uow.DocumentRepository().Delete(ctx, id)
}

func (ds *documentService) ownedDocument(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Document, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document not found or access denied")
	}
	return doc, nil
}

func toDocumentResponse(doc *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:             doc.Id,
		DisplayName:    doc.DisplayName,
		Filename:       doc.Filename,
		Status:         doc.Status,
		SearchSummary:  doc.SearchSummary,
		StructuredData: doc.StructuredData,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}
