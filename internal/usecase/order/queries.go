package usecase

import "github.com/yuanbr/escrow-order-service/internal/domain"

func (uc *DefaultOrderUsecase) GetOrderByID(orderID string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByID(orderID)
}

func (uc *DefaultOrderUsecase) GetOrdersByBuyerID(buyerID string) ([]*domain.Order, error) {
	return uc.OrderRepo.GetOrdersByBuyerID(buyerID)
}

func (uc *DefaultOrderUsecase) GetOrdersBySupplierID(supplierID string) ([]*domain.Order, error) {
	return uc.OrderRepo.GetOrdersBySupplierID(supplierID)
}
