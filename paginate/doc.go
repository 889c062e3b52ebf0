// Package paginate 把长文本切成适合显示区域的页面。
//
// 每页是剩余文本中渲染高度（由注入的 Oracle 给出）不超过页面容量的最长前缀。
// 切分点先按前缀长度二分查找，再在一个短窗口内回退到最近的句末或换行。
// 若连一个字符都放不下，则在下一个换行处（或固定长度处）强制切分，保证循环推进。
//
// 页面会去掉首尾空白；用空白把各页拼接起来即可按顺序还原文档中的词。
package paginate
