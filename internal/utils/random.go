package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}
var workshopTopics = []string{
	"数论", "组合", "图论", "密码学", "量子计算", "机器学习", "天文", "拓扑",
	"博弈论", "编译原理", "概率", "分布式系统", "生物信息", "逻辑", "几何", "算法",
}
var workshopKinds = []string{"入门", "进阶", "专题", "实践", "研讨"}

func GenerateRandomChineseName(rng *rand.Rand) string {
	surname := commonSurnames[rng.Intn(len(commonSurnames))]
	nameLength := rng.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rng.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateUsernameFromChineseName 用姓名每个字拼音的前缀加上随机数字生成用户名
func GenerateUsernameFromChineseName(rng *rand.Rand, chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rng.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rng.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rng.Intn(len(digits))])
	}

	return username
}

// GenerateRomanizedName 把中文姓名转换为首字母大写的拼音，例如 "王伟" -> "Wang Wei"
func GenerateRomanizedName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	for i, p := range pinyinArray {
		if p != "" {
			pinyinArray[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(pinyinArray, " ")
}

func GenerateRandomUser(rng *rand.Rand, id int64) domain.User {
	fullName := GenerateRandomChineseName(rng)
	return domain.User{
		ID:   id,
		Name: fmt.Sprintf("%s (%s)", fullName, GenerateUsernameFromChineseName(rng, fullName)),
	}
}

func GenerateRandomWorkshop(rng *rand.Rand, id int64, lecturerIDs []int64) domain.Workshop {
	ws := domain.Workshop{
		ID:   id,
		Name: workshopTopics[rng.Intn(len(workshopTopics))] + workshopKinds[rng.Intn(len(workshopKinds))],
	}

	// 1 到 2 位讲师
	lecturers := GenerateRandomSubset(rng, lecturerIDs, 2)
	ws.Lecturers = lecturers

	// 大约三分之一的工作坊有禁止的时间块
	if rng.Intn(3) == 0 {
		blocks := make([]int64, domain.BlockCount)
		for i := range blocks {
			blocks[i] = int64(i)
		}
		for _, b := range GenerateRandomSubset(rng, blocks, 2) {
			ws.DisallowedBlocks = append(ws.DisallowedBlocks, int(b))
		}
	}

	return ws
}

// 使用 Fisher-Yates 洗牌算法来生成一个大小为 1 到 maxSize 的随机子集
func GenerateRandomSubset(rng *rand.Rand, arr []int64, maxSize int) []int64 {
	if len(arr) == 0 {
		return nil
	}
	arrCopy := append([]int64{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rng.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rng.Intn(min(maxSize, len(arrCopy))) + 1
	return arrCopy[:l]
}

// GenerateRandomSnapshot 生成一份随机的排班输入，用于测试与压测
func GenerateRandomSnapshot(rng *rand.Rand, workshopCount, userCount, registrationCount int) *domain.Snapshot {
	s := &domain.Snapshot{
		Workshops:     make([]domain.Workshop, 0, workshopCount),
		Users:         make([]domain.User, 0, userCount),
		Participation: make([]domain.Participation, 0, registrationCount),
	}

	userIDs := make([]int64, userCount)
	for i := range userIDs {
		userIDs[i] = int64(i + 1)
		s.Users = append(s.Users, GenerateRandomUser(rng, userIDs[i]))
	}

	workshopIDs := make([]int64, workshopCount)
	for i := range workshopIDs {
		workshopIDs[i] = int64(i + 1)
		s.Workshops = append(s.Workshops, GenerateRandomWorkshop(rng, workshopIDs[i], userIDs))
	}

	if userCount == 0 || workshopCount == 0 {
		return s
	}

	seen := make(map[domain.Participation]bool)
	for i := 0; i < registrationCount; i++ {
		p := domain.Participation{
			UserID:     userIDs[rng.Intn(userCount)],
			WorkshopID: workshopIDs[rng.Intn(workshopCount)],
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		s.Participation = append(s.Participation, p)
	}

	return s
}
