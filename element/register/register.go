// Package register 注册全部元件类型
package register

import (
	_ "accircuit/element/capacitor"
	_ "accircuit/element/inductor"
	_ "accircuit/element/resistor"
)
