package main

import (
	"context"
	"flag"
	"fmt"
	"vibelog/internal/domain/user/model"
	"vibelog/internal/domain/user/repository"
	"vibelog/internal/pkg/apperr"
	"vibelog/internal/pkg/config"
	"vibelog/pkg/database"
	"vibelog/pkg/logger"

	"go.uber.org/zap"
)

// 为本地联调与 stress_tool 准备账号：user1..userN、一个版主和一个管理员
func main() {
	users := flag.Int("users", 1000, "普通用户数量")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	log, err := logger.Init(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.InitDatabase(cfg.Database, false, log)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	accounts := make([]*model.User, 0, *users+2)
	for i := 1; i <= *users; i++ {
		name := fmt.Sprintf("user%d", i)
		accounts = append(accounts, &model.User{Username: name, Email: name + "@vibelog.local", Role: model.RoleUser})
	}
	moderator := &model.User{Username: "moderator", Email: "moderator@vibelog.local", Role: model.RoleModerator}
	admin := &model.User{Username: "admin", Email: "admin@vibelog.local", Role: model.RoleAdmin}
	if err := moderator.SetRoleProfile(model.ModeratorProfile{}); err != nil {
		log.Fatal("moderator profile", zap.Error(err))
	}
	if err := admin.SetRoleProfile(model.AdminProfile{Level: model.AdminLevelSuper}); err != nil {
		log.Fatal("admin profile", zap.Error(err))
	}
	accounts = append(accounts, moderator, admin)

	created, skipped := 0, 0
	for _, u := range accounts {
		if err := repo.Create(ctx, u); err != nil {
			if apperr.IsValidation(err) {
				skipped++
				continue
			}
			log.Fatal("create user", zap.String("username", u.Username), zap.Error(err))
		}
		created++
	}
	log.Info("seed finished", zap.Int("created", created), zap.Int("skipped", skipped))
}
