package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecshop/internal/domain/model"
	"ecshop/internal/notify"
	repo "ecshop/internal/repository"

	"go.uber.org/zap"
)

// 注文ステータスの変更（管理者・配達担当・決済確定）
type OrderStatusUsecase struct {
	tx       repo.TransactionManager
	users    repo.UserRepository
	notifier notify.Dispatcher
	log      *zap.Logger
}

func NewOrderStatusUsecase(tx repo.TransactionManager, users repo.UserRepository, notifier notify.Dispatcher, log *zap.Logger) *OrderStatusUsecase {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderStatusUsecase{tx: tx, users: users, notifier: notifier, log: log}
}

// 管理者用の注文一覧
func (u *OrderStatusUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// ChangeStatus はロールに応じてステータスを変える。
// cancelled にするときは在庫を戻す。確定後に注文者へ通知する。
func (u *OrderStatusUsecase) ChangeStatus(ctx context.Context, actor model.Actor, orderID int64, to model.OrderStatus) (OrderOutput, error) {
	if !actor.Authenticated() {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.changeStatus(ctx, actor, orderID, to, false)
}

// MarkPaid は決済確定の通知を受けて pending → paid にする（システム操作）。
// すでに paid なら何もしない。
func (u *OrderStatusUsecase) MarkPaid(ctx context.Context, orderID int64) (OrderOutput, error) {
	return u.changeStatus(ctx, model.SystemActor(), orderID, model.OrderStatusPaid, true)
}

func (u *OrderStatusUsecase) changeStatus(ctx context.Context, actor model.Actor, orderID int64, to model.OrderStatus, sameIsNoop bool) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	to = model.OrderStatus(strings.ToLower(strings.TrimSpace(string(to))))
	if !to.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var (
		out     OrderOutput
		updated model.Order
		changed bool
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同時更新を防ぐため行ロック
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		if sameIsNoop && o.Status == to {
			out = toOrderOutput(o, items)
			return nil
		}
		if err := model.CheckTransition(o.Status, to, actor.Role, o.IsAssignedTo(actor.UserID)); err != nil {
			return err
		}

		// cancelled のときだけ在庫戻し
		if to == model.OrderStatusCancelled && o.Status.HoldsStock() {
			for _, it := range items {
				if it.StockUnits <= 0 {
					continue
				}
				if err := r.Inventory().IncreaseStock(ctx, it.StockUnit(), it.StockUnits); err != nil {
					return err
				}
			}
		}

		before := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, to); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return err
		}

		//監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			ActorRole:    actor.Role,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q}`, before),
			AfterJSON:    fmt.Sprintf(`{"status":%q}`, to),
			CreatedAt:    time.Now(),
		}); err != nil {
			return err
		}

		o.Status = to
		updated = o
		changed = true
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, u.wrap(err, orderID)
	}

	if changed {
		u.log.Info("order status changed",
			zap.Int64("order_id", orderID),
			zap.String("status", string(to)),
			zap.String("actor_role", string(actor.Role)),
			zap.Int64("actor_user_id", actor.UserID),
		)
		u.dispatch(ctx, notify.StatusChanged(updated))
	}
	return out, nil
}

// AssignDelivery は注文に配達担当（DELIVERY ロール）を割り当て、担当者に通知する。
func (u *OrderStatusUsecase) AssignDelivery(ctx context.Context, actor model.Actor, orderID int64, deliveryUserID int64) (OrderOutput, error) {
	if !actor.Authenticated() {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != model.RoleAdmin {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if orderID <= 0 || deliveryUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	du, err := u.users.FindByID(ctx, deliveryUserID)
	if err != nil {
		return OrderOutput{}, u.wrap(err, orderID)
	}
	if du == nil || !du.IsActive {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "delivery user not found")
	}
	if du.Role != model.RoleDelivery {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "user is not a delivery user")
	}

	var (
		out     OrderOutput
		updated model.Order
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		//終わった注文には割り当てない
		if o.Status.Terminal() {
			return NewHTTPError(http.StatusConflict, "order is closed")
		}

		var before int64
		if o.DeliveryUserID != nil {
			before = *o.DeliveryUserID
		}
		if err := r.Orders().AssignDelivery(ctx, orderID, deliveryUserID); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			ActorRole:    actor.Role,
			Action:       model.AuditActionAssignDelivery,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"delivery_user_id":%d}`, before),
			AfterJSON:    fmt.Sprintf(`{"delivery_user_id":%d}`, deliveryUserID),
			CreatedAt:    time.Now(),
		}); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		o.DeliveryUserID = &deliveryUserID
		updated = o
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, u.wrap(err, orderID)
	}

	u.dispatch(ctx, notify.DeliveryAssigned(updated, deliveryUserID))
	return out, nil
}

// 通知の失敗で操作を失敗にはしない
func (u *OrderStatusUsecase) dispatch(ctx context.Context, ev notify.Event) {
	if err := u.notifier.Dispatch(context.WithoutCancel(ctx), ev); err != nil {
		u.log.Warn("notify failed", zap.Int64("order_id", ev.OrderID), zap.Error(err))
	}
}

func (u *OrderStatusUsecase) wrap(err error, orderID int64) error {
	if isDomainError(err) {
		return err
	}
	u.log.Error("order status: unexpected error", zap.Int64("order_id", orderID), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

// 注文に対する管理操作の履歴（1件分）
type OrderHistoryEntry struct {
	Action      model.AuditAction `json:"action"`
	ActorUserID int64             `json:"actor_user_id"`
	ActorRole   model.Role        `json:"actor_role"`
	Before      json.RawMessage   `json:"before,omitempty"`
	After       json.RawMessage   `json:"after,omitempty"`
	At          time.Time         `json:"at"`
}

// 管理者用。ステータス変更・配達割り当ての監査ログを古い順に返す
func (u *OrderStatusUsecase) History(ctx context.Context, actor model.Actor, orderID int64) ([]OrderHistoryEntry, error) {
	if !actor.Authenticated() {
		return []OrderHistoryEntry{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != model.RoleAdmin {
		return []OrderHistoryEntry{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if orderID <= 0 {
		return []OrderHistoryEntry{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var logs []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return err
		}
		var err error
		logs, err = r.AuditLogs().ListByResource(ctx, model.AuditResourceOrder, orderID, 0)
		return err
	})
	if err != nil {
		return []OrderHistoryEntry{}, u.wrap(err, orderID)
	}

	out := make([]OrderHistoryEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, OrderHistoryEntry{
			Action:      l.Action,
			ActorUserID: l.ActorUserID,
			ActorRole:   l.ActorRole,
			Before:      rawJSON(l.BeforeJSON),
			After:       rawJSON(l.AfterJSON),
			At:          l.CreatedAt,
		})
	}
	return out, nil
}

// 空や壊れたJSONはnull扱い
func rawJSON(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}
