// Package hierarchy строит дерево оборудования из плоского списка устройств.
// Код позиции кодирует иерархию дефисами и точками (например "A.1-B-C-D.1.2"):
// до четырёх групп через дефис, первая и последняя группы дополнительно
// разбиваются по точкам. Построение чистое: БД не трогает, ошибок не возвращает,
// некорректные коды деградируют до более коротких путей.
package hierarchy

import (
	"strings"

	"github.com/Nestert/AsuOpt-sub000/models"
)

// maxGroups — максимум позиционных групп в коде оборудования.
const maxGroups = 4

// TreeNode — узел дерева. Строится заново на каждый запрос, в БД не хранится.
// Devices — устройства, чей код закончился ровно на этом узле (в том числе
// на промежуточных узлах при коротких кодах). LeafDevice заполняется, только
// когда на узле терминируется ровно одно устройство с полным (четырёхгрупповым)
// кодом; при совпадающих кодах остаётся nil и клиент показывает список.
type TreeNode struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Children   map[string]*TreeNode `json:"children"`
	Devices    []models.Device      `json:"devices"`
	LeafDevice *models.Device       `json:"leafDevice,omitempty"`

	terminal int
}

func newNode(id, name string) *TreeNode {
	return &TreeNode{
		ID:       id,
		Name:     name,
		Children: make(map[string]*TreeNode),
		Devices:  make([]models.Device, 0),
	}
}

// child возвращает дочерний узел с данным именем, создавая его при необходимости.
func (n *TreeNode) child(name, id string) *TreeNode {
	if c, ok := n.Children[name]; ok {
		return c
	}
	c := newNode(id, name)
	n.Children[name] = c
	return c
}

// BuildTree строит дерево по кодам оборудования. Устройства с пустым кодом в
// дерево не попадают (остаются в плоском списке для поиска). Пустые сегменты
// (подряд идущие разделители) пропускаются без создания узлов.
func BuildTree(devices []models.Device) *TreeNode {
	root := newNode("", "")

	for _, dev := range devices {
		code := strings.TrimSpace(dev.EquipmentCode)
		if code == "" {
			continue
		}

		groups := strings.SplitN(code, "-", maxGroups)

		cur := root
		id := ""

		// Группа 0: путь из сегментов через точку.
		for _, seg := range strings.Split(groups[0], ".") {
			if seg == "" {
				continue
			}
			id = joinDot(id, seg)
			cur = cur.child(seg, id)
		}

		// Группы 1 и 2: по одному узлу на группу, id — префикс через дефис.
		for g := 1; g < 3 && g < len(groups); g++ {
			if groups[g] == "" {
				continue
			}
			id = id + "-" + groups[g]
			cur = cur.child(groups[g], id)
		}

		// Группа 3: снова сегменты через точку; последний непустой сегмент —
		// кандидат в носители листа.
		terminal := false
		if len(groups) == maxGroups {
			first := true
			for _, seg := range strings.Split(groups[3], ".") {
				if seg == "" {
					continue
				}
				if first {
					id = id + "-" + seg
					first = false
				} else {
					id = id + "." + seg
				}
				cur = cur.child(seg, id)
				terminal = true
			}
		}

		cur.Devices = append(cur.Devices, dev)
		if terminal {
			cur.terminal++
		}
	}

	markLeaves(root)
	return root
}

func joinDot(id, seg string) string {
	if id == "" {
		return seg
	}
	return id + "." + seg
}

// markLeaves расставляет LeafDevice после размещения всех устройств:
// указатели в Devices стабильны только когда списки больше не растут.
func markLeaves(n *TreeNode) {
	if n.terminal == 1 && len(n.Devices) == 1 {
		n.LeafDevice = &n.Devices[0]
	}
	for _, c := range n.Children {
		markLeaves(c)
	}
}

// Find возвращает узел с данным id (поиск в глубину) или nil.
func (n *TreeNode) Find(id string) *TreeNode {
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// CountDevices возвращает число устройств, размещённых в поддереве узла.
func (n *TreeNode) CountDevices() int {
	total := len(n.Devices)
	for _, c := range n.Children {
		total += c.CountDevices()
	}
	return total
}
