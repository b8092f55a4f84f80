package server

import (
	"marketplace/internal/config"
	"marketplace/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// 全ハンドラをまとめて受け取る
type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	Order         *handler.OrderHandler
	SellerOrder   *handler.SellerOrderHandler
	SellerProduct *handler.SellerProductHandler
	AdminOrder    *handler.AdminOrderHandler
	Review        *handler.ReviewHandler
	Notification  *handler.NotificationHandler
}

func Start(addr string, cfg config.Config, h Handlers) error {
	e := echo.New()

	//予期しないpanicも500のJSONに変換する
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	RegisterRoutes(e, cfg, h)

	return e.Start(addr)
}
