package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
	"vibelog/internal/pkg/config"
	"vibelog/pkg/utils"
)

var httpClient *http.Client

func init() {
	// 优化 HTTP Client 配置
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

// 压测前需要准备 user1..userN（ID 为 1..N）以及目标文章和被关注用户
func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL")
		postID   = flag.Uint("post", 1, "文章ID")
		followee = flag.Uint("followee", 1, "被关注用户ID")
		users    = flag.Int("users", 1000, "并发用户数")
		repeat   = flag.Int("repeat", 3, "每个用户重复关注次数")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	jwt := utils.NewJWTManager(cfg.JWT.Secret, time.Hour)

	tokens := make([]string, *users)
	for i := range tokens {
		id := uint(i + 1)
		tokens[i], _, err = jwt.GenerateToken(id, fmt.Sprintf("user%d", id), "USER")
		if err != nil {
			fmt.Printf("签发 token 失败: %v\n", err)
			os.Exit(1)
		}
	}

	before, err := countLikes(*baseURL, *postID)
	if err != nil {
		fmt.Printf("读取点赞数失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("开始压测：%d 个用户同时点赞文章 %d，并各自重复关注用户 %d 共 %d 次...\n", *users, *postID, *followee, *repeat)

	var wg sync.WaitGroup
	var mu sync.Mutex
	liked, unliked, failed := 0, 0, 0
	start := time.Now()

	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			state, ok := toggleLike(*baseURL, *postID, token)

			// 重复关注只能产生一条边
			for i := 0; i < *repeat; i++ {
				call(http.MethodPost, fmt.Sprintf("%s/users/%d/follow", *baseURL, *followee), token, nil)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case !ok:
				failed++
			case state:
				liked++
			default:
				unliked++
			}
		}(token)
	}

	wg.Wait()
	duration := time.Since(start)

	after, err := countLikes(*baseURL, *postID)
	if err != nil {
		fmt.Printf("读取点赞数失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(*users*(1+*repeat))/duration.Seconds())
	fmt.Printf("点赞: %d  取消: %d  失败: %d\n", liked, unliked, failed)
	fmt.Printf("点赞数: %d -> %d (预期 %d)\n", before, after, before+int64(liked-unliked))
	fmt.Println("--------------------------------------------------")

	if after != before+int64(liked-unliked) {
		os.Exit(2)
	}
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func call(method, url, token string, out interface{}) bool {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return false
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return false
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Code != 0 {
		return false
	}
	if out != nil {
		return json.Unmarshal(env.Data, out) == nil
	}
	return true
}

func toggleLike(baseURL string, postID uint, token string) (bool, bool) {
	var result struct {
		Liked bool `json:"liked"`
	}
	ok := call(http.MethodPost, fmt.Sprintf("%s/posts/%d/like", baseURL, postID), token, &result)
	return result.Liked, ok
}

func countLikes(baseURL string, postID uint) (int64, error) {
	var result struct {
		Count int64 `json:"totalLikes"`
	}
	if !call(http.MethodGet, fmt.Sprintf("%s/posts/%d/likes", baseURL, postID), "", &result) {
		return 0, fmt.Errorf("GET /posts/%d/likes failed", postID)
	}
	return result.Count, nil
}
